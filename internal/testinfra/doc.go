// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

// Package testinfra provides test infrastructure for exercising the export
// pipeline end to end without a real Unimus server.
//
// MockUnimus is an httptest-backed stand-in for the Unimus REST API v2. It
// serves the health, device and backup endpoints from in-memory fixtures,
// enforces bearer token authentication and honors the page/size query
// parameters, so client pagination runs against it exactly as it would
// against a production server. Failure injection covers the cases the
// pipeline must survive: unhealthy server status and HTTP error responses.
package testinfra
