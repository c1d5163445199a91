// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package export

import (
	"errors"
	"testing"

	models "github.com/tomtom215/unimus-exporter/internal/models/unimus"
)

func TestDecodeBackup(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "simple text",
			payload: "aGVsbG8=",
			want:    "hello",
		},
		{
			name:    "empty payload",
			payload: "",
			want:    "",
		},
		{
			name:    "config snippet",
			payload: "aG9zdG5hbWUgY29yZS1zd2l0Y2gK",
			want:    "hostname core-switch\n",
		},
		{
			name:    "line-wrapped payload",
			payload: "aGVs\nbG8=",
			want:    "hello",
		},
		{
			name:    "crlf-wrapped payload",
			payload: "aGVs\r\nbG8=",
			want:    "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := DecodeBackup(1, models.Backup{ID: 10, Bytes: tt.payload})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if string(data) != tt.want {
				t.Errorf("DecodeBackup() = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestDecodeBackup_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"truncated padding", "aGVsbG8"},
		{"invalid characters", "aGVs#bG8="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBackup(7, models.Backup{ID: 42, Bytes: tt.payload})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Expected *DecodeError, got %T", err)
			}

			if decodeErr.DeviceID != 7 {
				t.Errorf("Expected DeviceID 7, got %d", decodeErr.DeviceID)
			}

			if decodeErr.BackupID != 42 {
				t.Errorf("Expected BackupID 42, got %d", decodeErr.BackupID)
			}

			if decodeErr.Unwrap() == nil {
				t.Error("Expected wrapped cause, got nil")
			}
		})
	}
}

func TestDecodeError_Error(t *testing.T) {
	err := &DecodeError{DeviceID: 3, BackupID: 99, Err: errors.New("illegal base64 data")}

	want := "decode backup 99 for device 3: illegal base64 data"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
