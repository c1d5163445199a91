// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDeviceBackupsResponse_JSONUnmarshal(t *testing.T) {
	jsonData := `{
		"paginator": {
			"page": 1,
			"size": 20,
			"totalPages": 2,
			"totalElements": 23
		},
		"data": [
			{
				"id": 101,
				"validSince": 1713187200,
				"validUntil": 1713273600,
				"type": "TEXT",
				"bytes": "aG9zdG5hbWUgY29yZS1zdy0wMQ=="
			},
			{
				"id": 102,
				"validSince": 1713273600,
				"validUntil": 1713273600,
				"type": "BINARY",
				"bytes": "AAECAw=="
			}
		]
	}`

	var resp DeviceBackupsResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if resp.Paginator.Page != 1 {
		t.Errorf("Paginator.Page = %d, want 1", resp.Paginator.Page)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}

	text := resp.Data[0]
	if text.ID != 101 {
		t.Errorf("Backup.ID = %d, want 101", text.ID)
	}
	if text.Type != BackupTypeText {
		t.Errorf("Backup.Type = %q, want TEXT", text.Type)
	}
	if !text.IsText() {
		t.Error("IsText() = false, want true")
	}
	if text.Bytes != "aG9zdG5hbWUgY29yZS1zdy0wMQ==" {
		t.Errorf("Backup.Bytes = %q", text.Bytes)
	}

	binary := resp.Data[1]
	if binary.IsText() {
		t.Error("IsText() = true, want false for BINARY")
	}
}

func TestLatestBackupsResponse_JSONUnmarshal(t *testing.T) {
	jsonData := `{
		"paginator": {
			"page": 0,
			"size": 50,
			"totalPages": 1,
			"totalElements": 2
		},
		"data": [
			{
				"deviceId": 1,
				"backup": {
					"id": 201,
					"validSince": 1713187200,
					"validUntil": 1713273600,
					"type": "TEXT",
					"bytes": "dmVyc2lvbiAxNS4yCg=="
				}
			},
			{
				"deviceId": 7,
				"backup": {
					"id": 202,
					"validSince": 1713187300,
					"validUntil": 1713187300,
					"type": "BINARY",
					"bytes": "AAECAw=="
				}
			}
		]
	}`

	var resp LatestBackupsResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}

	first := resp.Data[0]
	if first.DeviceID != 1 {
		t.Errorf("DeviceID = %d, want 1", first.DeviceID)
	}
	if first.Backup.ID != 201 {
		t.Errorf("Backup.ID = %d, want 201", first.Backup.ID)
	}
	if first.Backup.Type != BackupTypeText {
		t.Errorf("Backup.Type = %q, want TEXT", first.Backup.Type)
	}
}

func TestBackupValidSinceTime(t *testing.T) {
	b := Backup{ValidSince: 1713187200}
	want := time.Unix(1713187200, 0)
	if got := b.ValidSinceTime(); !got.Equal(want) {
		t.Errorf("ValidSinceTime() = %v, want %v", got, want)
	}

	var zero Backup
	if !zero.ValidSinceTime().IsZero() {
		t.Error("ValidSinceTime() for missing timestamp should be zero time")
	}
}

func TestBackupIsText(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"TEXT", true},
		{"text", true},
		{"Text", true},
		{"BINARY", false},
		{"", false},
		{"UNKNOWN", false},
	}

	for _, tt := range tests {
		b := Backup{Type: tt.typ}
		if got := b.IsText(); got != tt.want {
			t.Errorf("IsText() with type %q = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
