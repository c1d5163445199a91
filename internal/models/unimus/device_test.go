// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

import (
	"encoding/json"
	"testing"
)

func TestDevicesResponse_JSONUnmarshal(t *testing.T) {
	jsonData := `{
		"paginator": {
			"page": 0,
			"size": 50,
			"totalPages": 2,
			"totalElements": 53
		},
		"data": [
			{
				"id": 1,
				"uuid": "f7e1b9a2-5f1e-4f0c-9a61-2f9a1a3c1d10",
				"createTime": 1713187200,
				"address": "core-sw-01.example.net",
				"description": "Core switch",
				"vendor": "Cisco",
				"type": "IOS",
				"model": "C9300-48P",
				"zoneId": "0"
			},
			{
				"id": 2,
				"address": "10.20.0.1"
			}
		]
	}`

	var resp DevicesResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if resp.Paginator.Page != 0 {
		t.Errorf("Paginator.Page = %d, want 0", resp.Paginator.Page)
	}
	if resp.Paginator.TotalPages != 2 {
		t.Errorf("Paginator.TotalPages = %d, want 2", resp.Paginator.TotalPages)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}

	first := resp.Data[0]
	if first.ID != 1 {
		t.Errorf("Device.ID = %d, want 1", first.ID)
	}
	if first.Address != "core-sw-01.example.net" {
		t.Errorf("Device.Address = %q", first.Address)
	}
	if first.Vendor != "Cisco" {
		t.Errorf("Device.Vendor = %q, want Cisco", first.Vendor)
	}
	if first.CreateTime != 1713187200 {
		t.Errorf("Device.CreateTime = %d", first.CreateTime)
	}

	// Optional fields absent on the second device
	second := resp.Data[1]
	if second.Description != "" || second.Vendor != "" {
		t.Errorf("optional fields should be empty, got %+v", second)
	}
}

func TestDeviceLabel(t *testing.T) {
	tests := []struct {
		name   string
		device Device
		want   string
	}{
		{
			name:   "address preferred",
			device: Device{ID: 1, Address: "10.0.0.1", Description: "edge router"},
			want:   "10.0.0.1",
		},
		{
			name:   "description fallback",
			device: Device{ID: 2, Description: "edge router"},
			want:   "edge router",
		},
		{
			name:   "neither set",
			device: Device{ID: 3},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}
