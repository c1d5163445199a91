// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

// Package supervisor builds the suture supervision tree that keeps the
// exporter running.
//
// The tree has two layers under the root:
//
//   - export: the scheduled export pipeline
//   - api: the optional ops HTTP server
//
// Layer isolation means a crashing ops server never interrupts a running
// export, and vice versa. Supervisor events (service failures, restarts,
// backoff) are logged through the zerolog slog adapter via sutureslog.
//
// A failed export run is not a service failure: the scheduler logs it and
// waits for the next tick. Suture's restart-with-backoff applies to panics
// and unexpected service returns, not to upstream API errors.
package supervisor
