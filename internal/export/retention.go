// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// pruneExcept removes every regular file in dir except keep, returning how
// many were removed. A missing directory is a no-op; subdirectories are left
// alone. Pruning local files never touches remote git history, so commits
// record the deletions but nothing upstream is rewritten.
func (w *Writer) pruneExcept(dir, keep string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, &WriteError{Path: dir, Op: "read dir", Err: err}
	}

	pruned := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == keep {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return pruned, &WriteError{Path: path, Op: "prune", Err: err}
		}
		pruned++
	}

	return pruned, nil
}
