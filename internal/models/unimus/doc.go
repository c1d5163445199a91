// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

// Package unimus provides data models for Unimus API responses.
//
// This package contains Go struct definitions for the Unimus API v2 endpoints
// used by the exporter. Each struct matches the Unimus response format with
// appropriate JSON tags.
//
// # Overview
//
// Health:
//   - HealthResponse: Server health report (GET /api/v2/health)
//
// Devices:
//   - DevicesResponse: Paginated device listing (GET /api/v2/devices)
//   - Device: A single managed device
//
// Backups:
//   - DeviceBackupsResponse: All backups of one device (GET /api/v2/devices/{id}/backups)
//   - LatestBackupsResponse: Newest backup per device (GET /api/v2/devices/backups/latest)
//   - Backup: A single stored configuration backup
//   - DeviceLatestBackup: Pairing of device id and its newest backup
//
// # Response Envelope
//
// List endpoints share a paging envelope:
//
//	{
//	    "paginator": {
//	        "page": 0,
//	        "size": 50,
//	        "totalPages": 3,
//	        "totalElements": 121
//	    },
//	    "data": [ ... ]
//	}
//
// The health endpoint wraps its payload in a bare "data" object instead.
//
// # Field Naming Conventions
//
// JSON fields use camelCase to match the Unimus API:
//
//	type Backup struct {
//	    ValidSince int64  `json:"validSince"`
//	    ValidUntil int64  `json:"validUntil"`
//	}
//
// # Numeric Types
//
// Unimus uses int64 for identifiers and Unix-second timestamps.
//
// # Version Compatibility
//
// These models are compatible with Unimus API v2. Unknown fields added by
// newer Unimus releases are ignored by Go's JSON decoder.
//
// # See Also
//
//   - internal/unimus: HTTP client using these models
//   - internal/export: Backup decoding and filesystem layout
//   - https://wiki.unimus.net/display/UNPUB/Full+API+v.2+documentation
package unimus
