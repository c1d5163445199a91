// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

import (
	"strings"
	"time"
)

// Backup content type values.
const (
	BackupTypeText   = "TEXT"
	BackupTypeBinary = "BINARY"
)

// DeviceBackupsResponse is the envelope of GET /api/v2/devices/{id}/backups.
type DeviceBackupsResponse struct {
	Paginator Paginator `json:"paginator"`
	Data      []Backup  `json:"data"`
}

// Backup represents one stored device configuration backup.
// Bytes carries the content base64-encoded. ValidSince and ValidUntil are
// Unix-second timestamps bounding the period during which this backup was
// the device's current configuration.
type Backup struct {
	ID         int64  `json:"id"`
	ValidSince int64  `json:"validSince"`
	ValidUntil int64  `json:"validUntil"`
	Type       string `json:"type"`
	Bytes      string `json:"bytes"`
}

// ValidSinceTime returns ValidSince as a time.Time.
// A missing timestamp yields the zero time.
func (b Backup) ValidSinceTime() time.Time {
	if b.ValidSince == 0 {
		return time.Time{}
	}
	return time.Unix(b.ValidSince, 0)
}

// IsText reports whether the backup content is textual. Matching is
// case-insensitive; anything other than TEXT is treated as binary.
func (b Backup) IsText() bool {
	return strings.EqualFold(b.Type, BackupTypeText)
}

// LatestBackupsResponse is the envelope of GET /api/v2/devices/backups/latest.
type LatestBackupsResponse struct {
	Paginator Paginator            `json:"paginator"`
	Data      []DeviceLatestBackup `json:"data"`
}

// DeviceLatestBackup pairs a device id with that device's newest backup.
type DeviceLatestBackup struct {
	DeviceID int64  `json:"deviceId"`
	Backup   Backup `json:"backup"`
}
