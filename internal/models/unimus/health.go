// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

// HealthStatusOK is the status value a healthy Unimus server reports.
const HealthStatusOK = "OK"

// HealthResponse is the envelope of GET /api/v2/health.
type HealthResponse struct {
	Data HealthStatus `json:"data"`
}

// HealthStatus reports overall server health. Known status values are OK,
// LICENSING_UNREACHABLE and ERROR.
type HealthStatus struct {
	Status string `json:"status"`
}

// IsOK reports whether the server considers itself healthy.
func (h HealthStatus) IsOK() bool {
	return h.Status == HealthStatusOK
}
