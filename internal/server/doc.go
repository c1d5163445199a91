// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

// Package server provides the operational HTTP endpoint: health probes,
// Prometheus metrics and the result of the most recent export run.
//
// # Overview
//
// The endpoint is disabled by default (http_enabled=false) so the exporter's
// default footprint matches a plain cron-style deployment. When enabled it
// serves:
//
//	GET /api/v1/health/live   Liveness probe, always 200 while the process runs
//	GET /api/v1/health/ready  Readiness probe, 200 once an export has succeeded
//	                          (or the Unimus server is reachable before the
//	                          first run completes), 503 otherwise
//	GET /api/v1/status        JSON result of the most recent export run
//	GET /metrics              Prometheus metrics
//
// # Responses
//
// JSON endpoints use a uniform envelope:
//
//	{
//	  "status": "success",
//	  "data": { ... },
//	  "metadata": { "timestamp": "2026-08-25T12:00:00Z" }
//	}
//
// Errors carry an error object with a machine-readable code instead of data.
//
// # Middleware
//
// Every request passes through request-ID assignment, real-IP resolution,
// panic recovery, structured access logging and an IP-keyed rate limit.
// Responses echo the request ID in the X-Request-ID header.
//
// # See Also
//
//   - internal/export: the StatusStore backing /api/v1/status and readiness
//   - internal/metrics: the collectors served at /metrics
package server
