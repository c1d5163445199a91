// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

// Package services adapts the exporter's components to suture.Service.
//
// Each wrapper translates a component's own lifecycle into suture's
// context-aware Serve pattern:
//
//   - ExportService drives the export pipeline on the configured schedule
//   - HTTPServerService runs the ops HTTP server with graceful shutdown
//
// Wrappers return ctx.Err() on normal shutdown so the supervisor can tell
// an ordered stop from a crash.
package services
