// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package services

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/export"
	"github.com/tomtom215/unimus-exporter/internal/logging"
)

// ExportRunner runs one export cycle. Implemented by *export.Exporter; the
// full result lands in the status store, the scheduler only needs the error.
type ExportRunner interface {
	Run(ctx context.Context) (*export.RunResult, error)
}

// ExportService drives the export pipeline on a fixed schedule.
//
// The first run starts immediately, then a ticker fires every interval. A
// failed run is logged by the pipeline and retried at the next tick, never
// sooner: returning the error to suture would turn its restart backoff into
// a retry policy this exporter deliberately does not have.
//
// In run-once mode the service performs a single run and terminates the
// whole supervisor tree, shutting the process down.
type ExportService struct {
	runner   ExportRunner
	interval time.Duration
	runOnce  bool
	name     string
}

// NewExportService creates the scheduler service.
func NewExportService(runner ExportRunner, cfg config.ScheduleConfig) *ExportService {
	return &ExportService{
		runner:   runner,
		interval: cfg.Interval,
		runOnce:  cfg.RunOnce,
		name:     "export-scheduler",
	}
}

// Serve implements suture.Service.
func (s *ExportService) Serve(ctx context.Context) error {
	// The container was started to export backups, not to wait an interval
	_, err := s.runner.Run(ctx)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	if s.runOnce {
		logging.Info().Msg("Single export run completed, shutting down")
		return suture.ErrTerminateSupervisorTree
	}

	logging.Info().
		Dur("interval", s.interval).
		Msg("Export scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.runner.Run(ctx); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *ExportService) String() string {
	return s.name
}
