// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package export

import (
	"encoding/base64"
	"strings"

	models "github.com/tomtom215/unimus-exporter/internal/models/unimus"
)

// DecodeBackup decodes a backup's base64 payload into the raw configuration
// bytes. Unimus emits unwrapped standard base64; embedded line breaks are
// stripped before decoding so line-wrapped payloads still decode.
//
// An undecodable payload yields a *DecodeError carrying the device and
// backup identifiers.
func DecodeBackup(deviceID int64, b models.Backup) ([]byte, error) {
	payload := b.Bytes
	if strings.ContainsAny(payload, "\r\n") {
		payload = strings.NewReplacer("\r", "", "\n", "").Replace(payload)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{DeviceID: deviceID, BackupID: b.ID, Err: err}
	}

	return data, nil
}
