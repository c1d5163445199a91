// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

// Package main is the entry point for the Unimus exporter.
//
// The exporter pulls device configuration backups from a Unimus server's
// REST API and writes them to a local directory, optionally committing and
// pushing the result to a Git remote after every run.
//
// # Application Architecture
//
// The process initializes components in the following order:
//
//  1. Configuration: settings from environment variables and an optional
//     config file (Koanf v2)
//  2. Logging: global zerolog logger (JSON or console format)
//  3. Unimus client: rate-limited REST API v2 client with token auth
//  4. Export writer: per-device directory layout under the export root
//  5. Git syncer: commit-and-push of the export root (EXPORT_TYPE=git only)
//  6. Supervisor tree: export scheduler and optional ops HTTP server as
//     supervised services (suture v4)
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults.
//
// Minimal filesystem export:
//
//	export UNIMUS_SERVER_ADDRESS=https://unimus.example.com
//	export UNIMUS_API_KEY=your-api-token
//	export BACKUP_TYPE=latest        # or: all
//	export BACKUP_DIR=/data/backups
//	./unimus-exporter
//
// Git export over SSH:
//
//	export EXPORT_TYPE=git
//	export GIT_SERVER_PROTOCOL=ssh
//	export GIT_SERVER_ADDRESS=git.example.com
//	export GIT_USERNAME=git
//	export GIT_REPO_NAME=network-backups.git
//	export GIT_BRANCH=main
//	export GIT_SSH_KEY_PATH=/config/.ssh/id_rsa
//	./unimus-exporter
//
// Scheduling is controlled by RUN_INTERVAL (seconds between runs, default
// 3600) and RUN_ONCE=true for a single run, after which the process exits
// with a non-zero status if the run failed.
//
// The optional ops HTTP endpoint (HTTP_ENABLED=true, default port 8950)
// serves liveness and readiness probes, the last run status and Prometheus
// metrics. It is disabled by default.
//
// # Signal Handling
//
// The exporter handles graceful shutdown on SIGINT and SIGTERM: the
// current export run is canceled, the ops server drains in-flight
// requests, and the supervisor tree winds down within its shutdown
// timeout.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/export"
	"github.com/tomtom215/unimus-exporter/internal/gitsync"
	"github.com/tomtom215/unimus-exporter/internal/logging"
	"github.com/tomtom215/unimus-exporter/internal/metrics"
	"github.com/tomtom215/unimus-exporter/internal/server"
	"github.com/tomtom215/unimus-exporter/internal/supervisor"
	"github.com/tomtom215/unimus-exporter/internal/supervisor/services"
	"github.com/tomtom215/unimus-exporter/internal/unimus"
)

// version is injected at build time via -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	if err := logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		File:      cfg.Logging.File,
	}); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize logging")
	}
	defer func() {
		_ = logging.Close()
	}()

	logging.Info().Str("version", version).Msg("Starting Unimus exporter")
	logging.Info().
		Str("unimus_address", cfg.Unimus.Address).
		Str("backup_type", cfg.Export.BackupType).
		Str("export_type", cfg.Export.Type).
		Str("export_dir", cfg.Export.Dir).
		Bool("run_once", cfg.Schedule.RunOnce).
		Msg("Configuration loaded")

	// Initialize Unimus client and probe the API. A failed probe is not
	// fatal: the server may still be starting, and every export run checks
	// health again before touching the inventory.
	client := unimus.NewClient(&cfg.Unimus)
	if err := client.Health(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to reach Unimus (will retry each run)")
	} else {
		logging.Info().Msg("Connected to Unimus successfully")
	}

	writer := export.NewWriter(cfg.Export.Dir)

	// Git syncer is only built for git export; a broken git configuration
	// (bad protocol, missing SSH key) should fail at startup, not at the
	// end of the first export run.
	var syncer export.GitSyncer
	if cfg.Export.Type == config.ExportTypeGit {
		gitSyncer, err := gitsync.NewSyncer(cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize git syncer")
		}
		syncer = gitSyncer
		logging.Info().
			Str("remote", cfg.Git.RedactedRemoteURL()).
			Str("branch", cfg.Git.Branch).
			Msg("Git export enabled")
	}

	status := export.NewStatusStore()
	exporter := export.NewExporter(cfg, client, writer, syncer, status)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.AppUptime.Set(time.Since(startTime).Seconds())
			}
		}
	}()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddExportService(services.NewExportService(exporter, cfg.Schedule))
	if cfg.Schedule.RunOnce {
		logging.Info().Msg("Export scheduler added to supervisor tree (single run)")
	} else {
		logging.Info().
			Dur("interval", cfg.Schedule.Interval).
			Msg("Export scheduler added to supervisor tree")
	}

	if cfg.Server.Enabled {
		ops := server.NewServer(cfg.Server, status, client, version)
		httpServer := &http.Server{
			Addr:         ops.Addr(),
			Handler:      ops.Handler(),
			ReadTimeout:  ops.Timeout(),
			WriteTimeout: ops.Timeout(),
			IdleTimeout:  60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))
		logging.Info().Str("addr", httpServer.Addr).Msg("Ops HTTP server added to supervisor tree")
	} else {
		logging.Info().Msg("Ops HTTP endpoint disabled (HTTP_ENABLED=false)")
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal, single-run
	// termination or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if isUnexpectedShutdown(err) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if isUnexpectedShutdown(err) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	// In single-run mode the exit code is the run outcome
	if cfg.Schedule.RunOnce {
		if _, ok := status.LastSuccess(); !ok {
			logging.Error().Msg("Single export run failed")
			_ = logging.Close()
			os.Exit(1)
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// isUnexpectedShutdown filters the shutdown paths that are part of normal
// operation: context cancellation from a signal, and the scheduler
// terminating the tree after a single-run invocation.
func isUnexpectedShutdown(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, suture.ErrTerminateSupervisorTree)
}
