// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Unimus API request latency and errors
// - Export run outcomes and durations
// - Per-backup export, skip, and failure counts
// - Git repository sync operations
// - Ops HTTP endpoint latency and throughput

var (
	// Unimus API Metrics
	UnimusRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unimus_api_requests_total",
			Help: "Total number of Unimus API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	UnimusRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unimus_api_request_duration_seconds",
			Help:    "Duration of Unimus API requests in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"endpoint"},
	)

	UnimusRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unimus_api_request_errors_total",
			Help: "Total number of failed Unimus API requests",
		},
		[]string{"endpoint", "error_type"}, // "network", "status", "decode"
	)

	// Export Run Metrics
	ExportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_runs_total",
			Help: "Total number of export runs",
		},
		[]string{"result"}, // "success", "failure"
	)

	ExportRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_run_duration_seconds",
			Help:    "Duration of export runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Full runs can take minutes on large inventories
		},
	)

	ExportLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "export_last_success_timestamp",
			Help: "Unix timestamp of last successful export run",
		},
	)

	ExportRunErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_run_errors_total",
			Help: "Total number of export run errors",
		},
		[]string{"error_type"}, // "unimus_api", "filesystem", "git", "other"
	)

	DevicesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_devices_processed_total",
			Help: "Total number of devices processed across export runs",
		},
	)

	DevicesPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_devices_per_run",
			Help:    "Number of devices seen in each export run",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// Backup Metrics
	BackupsExported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backups_exported_total",
			Help: "Total number of backups written to disk",
		},
	)

	BackupsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backups_skipped_total",
			Help: "Total number of backups skipped",
		},
		[]string{"reason"}, // "exists", "empty"
	)

	BackupsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backups_failed_total",
			Help: "Total number of backups that failed to export",
		},
		[]string{"reason"}, // "decode", "write"
	)

	BackupBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_bytes_written_total",
			Help: "Total number of decoded backup bytes written to disk",
		},
	)

	BackupSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_size_bytes",
			Help:    "Decoded size of exported backups in bytes",
			Buckets: []float64{1024, 10240, 102400, 1048576, 10485760, 104857600}, // 1KiB to 100MiB
		},
	)

	// Git Sync Metrics
	GitSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "git_syncs_total",
			Help: "Total number of git sync operations",
		},
		[]string{"result"}, // "success", "noop", "failure"
	)

	GitSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "git_sync_duration_seconds",
			Help:    "Duration of git sync operations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120}, // Push dominates on slow remotes
		},
	)

	GitCommitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "git_commits_total",
			Help: "Total number of commits created",
		},
	)

	GitFilesCommitted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "git_files_committed",
			Help:    "Number of changed files in each commit",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	GitLastPushSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "git_last_push_success_timestamp",
			Help: "Unix timestamp of last successful git push",
		},
	)

	// Ops HTTP Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of ops API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Ops API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active ops API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordUnimusRequest records a Unimus API request metric
func RecordUnimusRequest(endpoint, statusCode string, duration time.Duration, err error) {
	UnimusRequestsTotal.WithLabelValues(endpoint, statusCode).Inc()
	UnimusRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		// Classify by message prefix
		errorType := "network"
		errorMsg := err.Error()
		switch {
		case contains(errorMsg, "unimus api"):
			errorType = "status"
		case contains(errorMsg, "decode"):
			errorType = "decode"
		}
		UnimusRequestErrors.WithLabelValues(endpoint, errorType).Inc()
	}
}

// RecordExportRun records the outcome of a complete export run
func RecordExportRun(duration time.Duration, devices int, err error) {
	ExportRunDuration.Observe(duration.Seconds())
	DevicesProcessed.Add(float64(devices))
	DevicesPerRun.Observe(float64(devices))
	if err != nil {
		ExportRunsTotal.WithLabelValues("failure").Inc()
		errorType := "other"
		errorMsg := err.Error()
		if len(errorMsg) > 0 {
			switch {
			case contains(errorMsg, "unimus"):
				errorType = "unimus_api"
			case contains(errorMsg, "write"), contains(errorMsg, "export dir"):
				errorType = "filesystem"
			case contains(errorMsg, "git"):
				errorType = "git"
			}
		}
		ExportRunErrors.WithLabelValues(errorType).Inc()
	} else {
		ExportRunsTotal.WithLabelValues("success").Inc()
		// Update last success timestamp
		ExportLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordBackupExported records a backup written to disk
func RecordBackupExported(decodedBytes int) {
	BackupsExported.Inc()
	BackupBytesWritten.Add(float64(decodedBytes))
	BackupSize.Observe(float64(decodedBytes))
}

// RecordBackupSkipped records a backup skipped without being written
func RecordBackupSkipped(reason string) {
	BackupsSkipped.WithLabelValues(reason).Inc()
}

// RecordBackupFailed records a backup that could not be exported
func RecordBackupFailed(reason string) {
	BackupsFailed.WithLabelValues(reason).Inc()
}

// RecordGitSync records a git sync operation and its outcome
func RecordGitSync(duration time.Duration, filesCommitted int, err error) {
	GitSyncDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		GitSyncsTotal.WithLabelValues("failure").Inc()
	case filesCommitted == 0:
		GitSyncsTotal.WithLabelValues("noop").Inc()
	default:
		GitSyncsTotal.WithLabelValues("success").Inc()
		GitCommitsTotal.Inc()
		GitFilesCommitted.Observe(float64(filesCommitted))
		GitLastPushSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordAPIRequest records an ops API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active ops API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// Helper function to check if string starts with substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && s[:len(substr)] == substr
}
