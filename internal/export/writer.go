// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	models "github.com/tomtom215/unimus-exporter/internal/models/unimus"
)

// maxSlugLen caps the sanitized device label so the joined directory name
// stays well under common 255-byte filename limits.
const maxSlugLen = 120

// WriteResult describes what a write operation did.
type WriteResult struct {
	Path    string // final path of the backup file
	Written bool   // false when the file already existed
	Pruned  int    // files removed before the write (latest mode)
}

// Writer persists decoded backups under a root directory using the
// per-device layout described in the package documentation.
//
// Thread Safety: Writer is stateless apart from the root path and safe for
// concurrent use, though the pipeline only ever calls it sequentially.
type Writer struct {
	root string
}

// NewWriter creates a Writer rooted at dir. The directory is created lazily
// by EnsureRoot, not here.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Root returns the export root directory.
func (w *Writer) Root() string {
	return w.root
}

// EnsureRoot creates the export root directory if it does not exist yet.
func (w *Writer) EnsureRoot() error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("export dir %s: %w", w.root, err)
	}
	return nil
}

// Write stores one decoded backup under the device directory. The file is
// not rewritten when it already exists; WriteResult.Written reports which
// case occurred.
func (w *Writer) Write(device models.Device, b models.Backup, data []byte) (WriteResult, error) {
	dir := filepath.Join(w.root, DeviceDirName(device))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WriteResult{}, &WriteError{Path: dir, Op: "mkdir", Err: err}
	}

	path := filepath.Join(dir, BackupFilename(b))
	if _, err := os.Stat(path); err == nil {
		return WriteResult{Path: path}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return WriteResult{}, &WriteError{Path: path, Op: "stat", Err: err}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WriteResult{}, &WriteError{Path: path, Op: "write", Err: err}
	}

	return WriteResult{Path: path, Written: true}, nil
}

// WriteLatest replaces the device directory contents with this backup:
// every other file is pruned first, then the backup is written unless its
// file already exists. Leaves each device directory holding exactly the
// current configuration.
func (w *Writer) WriteLatest(device models.Device, b models.Backup, data []byte) (WriteResult, error) {
	dir := filepath.Join(w.root, DeviceDirName(device))

	pruned, err := w.pruneExcept(dir, BackupFilename(b))
	if err != nil {
		return WriteResult{Pruned: pruned}, err
	}

	result, err := w.Write(device, b, data)
	result.Pruned = pruned
	return result, err
}

// DeviceDirName returns the directory name for a device: the sanitized
// address-or-description label suffixed with the device id. The id keeps
// names unique when labels repeat; devices without a usable label fall back
// to "device-<id>".
func DeviceDirName(device models.Device) string {
	slug := sanitizeLabel(device.Label())
	if slug == "" {
		return fmt.Sprintf("device-%d", device.ID)
	}
	return fmt.Sprintf("%s-%d", slug, device.ID)
}

// BackupFilename returns the file name for a backup: the validSince
// timestamp and backup id, with the extension chosen by content type.
func BackupFilename(b models.Backup) string {
	ext := ".bin"
	if b.IsText() {
		ext = ".txt"
	}
	return fmt.Sprintf("%s-%d%s", backupTimestamp(b), b.ID, ext)
}

// backupTimestamp formats validSince for use in file names. Backups without
// a timestamp sort together under "undated".
func backupTimestamp(b models.Backup) string {
	ts := b.ValidSinceTime()
	if ts.IsZero() {
		return "undated"
	}
	return ts.UTC().Format("2006-01-02-15-04-05")
}

// sanitizeLabel maps a device label onto a filesystem-safe slug. Letters,
// digits, dots and underscores pass through; every other run of characters
// (path separators, spaces, control characters) collapses to a single dash.
// Dots and dashes are trimmed from the edges so no label can produce a
// hidden or dot-relative directory name.
func sanitizeLabel(label string) string {
	var sb strings.Builder
	sb.Grow(len(label))

	prevDash := false
	for _, r := range label {
		if r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevDash = false
		} else if !prevDash {
			sb.WriteByte('-')
			prevDash = true
		}
	}

	slug := strings.Trim(sb.String(), "-.")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-.")
	}
	return slug
}
