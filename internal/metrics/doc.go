// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the exporter using the Prometheus client library, exposing
metrics for monitoring Unimus API health, export throughput, and git sync outcomes.

# Overview

The package provides metrics for:
  - Unimus API request latency, throughput, and errors
  - Export run durations and success/failure counts
  - Per-backup export, skip, and failure counts
  - Git sync operations (commits, pushes, no-ops)
  - Ops HTTP endpoint latency and rate limiting

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format when the
ops HTTP server is enabled:

	curl http://localhost:8950/metrics

# Available Metrics

Unimus API Metrics:
  - unimus_api_requests_total: Total API requests (counter)
    Labels: endpoint, status_code
  - unimus_api_request_duration_seconds: Request latency (histogram)
    Labels: endpoint
  - unimus_api_request_errors_total: Failed requests (counter)
    Labels: endpoint, error_type (network, status, decode)

Export Run Metrics:
  - export_runs_total: Completed runs (counter)
    Labels: result (success, failure)
  - export_run_duration_seconds: Run duration (histogram)
    Buckets: 1, 5, 10, 30, 60, 120, 300, 600
  - export_last_success_timestamp: Unix timestamp of last successful run (gauge)
  - export_devices_processed_total: Devices processed (counter)

Backup Metrics:
  - backups_exported_total: Backups written to disk (counter)
  - backups_skipped_total: Backups skipped (counter)
    Labels: reason (exists, empty)
  - backups_failed_total: Backups that failed to export (counter)
    Labels: reason (decode, write)
  - backup_bytes_written_total: Decoded bytes written (counter)
  - backup_size_bytes: Decoded backup sizes (histogram)

Git Sync Metrics:
  - git_syncs_total: Sync operations (counter)
    Labels: result (success, noop, failure)
  - git_sync_duration_seconds: Sync duration (histogram)
  - git_commits_total: Commits created (counter)
  - git_last_push_success_timestamp: Unix timestamp of last push (gauge)

# Usage Example

Recording export run metrics:

	start := time.Now()
	err := pipeline.Run(ctx)
	metrics.RecordExportRun(time.Since(start), deviceCount, err)

Recording per-backup outcomes:

	if errors.As(err, &decodeErr) {
	    metrics.RecordBackupFailed("decode")
	} else {
	    metrics.RecordBackupExported(len(data))
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'unimus-exporter'
	    static_configs:
	      - targets: ['localhost:8950']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# Export success rate over the last day
	sum(rate(export_runs_total{result="success"}[1d])) / sum(rate(export_runs_total[1d]))

	# Unimus API p95 latency
	histogram_quantile(0.95, rate(unimus_api_request_duration_seconds_bucket[5m]))

	# Time since last successful run
	time() - export_last_success_timestamp

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use the fixed API path templates, never device IDs
  - Error types are limited to predefined constants
  - Per-device and per-backup labels are avoided

# See Also

  - internal/server: ops HTTP server exposing /metrics
  - internal/unimus: API client metrics recording
  - internal/export: export pipeline metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
