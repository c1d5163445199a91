// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package export

import "fmt"

// DecodeError reports a backup payload that is not valid base64. The backup
// is skipped and nothing is written for it; the run continues.
type DecodeError struct {
	DeviceID int64
	BackupID int64
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode backup %d for device %d: %v", e.BackupID, e.DeviceID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WriteError reports a filesystem failure while persisting a backup. The
// affected backup is skipped; the run continues with the remaining work.
type WriteError struct {
	Path string
	Op   string // "mkdir", "stat", "write", "read dir", "prune"
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write backup: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
