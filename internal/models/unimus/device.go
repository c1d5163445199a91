// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

// DevicesResponse is the envelope of GET /api/v2/devices.
type DevicesResponse struct {
	Paginator Paginator `json:"paginator"`
	Data      []Device  `json:"data"`
}

// Device represents a device managed by Unimus.
type Device struct {
	ID          int64  `json:"id"`
	UUID        string `json:"uuid,omitempty"`
	CreateTime  int64  `json:"createTime,omitempty"` // Unix seconds
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
	Vendor      string `json:"vendor,omitempty"`
	Type        string `json:"type,omitempty"`
	Model       string `json:"model,omitempty"`
	ZoneID      string `json:"zoneId,omitempty"`
}

// Label returns the human identifier for the device: the address when set,
// otherwise the description. Empty when the device has neither.
func (d Device) Label() string {
	if d.Address != "" {
		return d.Address
	}
	return d.Description
}
