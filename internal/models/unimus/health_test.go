// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

import (
	"encoding/json"
	"testing"
)

func TestHealthResponse_JSONUnmarshal(t *testing.T) {
	t.Run("healthy server", func(t *testing.T) {
		jsonData := `{"data":{"status":"OK"}}`

		var resp HealthResponse
		if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if resp.Data.Status != "OK" {
			t.Errorf("Status = %q, want OK", resp.Data.Status)
		}
		if !resp.Data.IsOK() {
			t.Error("IsOK() = false, want true")
		}
	})

	t.Run("degraded server", func(t *testing.T) {
		jsonData := `{"data":{"status":"LICENSING_UNREACHABLE"}}`

		var resp HealthResponse
		if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if resp.Data.IsOK() {
			t.Error("IsOK() = true, want false for LICENSING_UNREACHABLE")
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		var resp HealthResponse
		if err := json.Unmarshal([]byte(`{}`), &resp); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if resp.Data.IsOK() {
			t.Error("IsOK() = true, want false for missing status")
		}
	})
}
