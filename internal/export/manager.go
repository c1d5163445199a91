// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

/*
manager.go - Export Pipeline Orchestration

This file contains the Exporter struct and the sequential run pipeline that
turns Unimus backups into files on disk.

Pipeline Stages (strictly in order, single-threaded):
  1. Ensure the export root exists
  2. Health gate against the Unimus server
  3. List devices (both modes need them for directory naming)
  4. Fetch, decode and write backups (latest or all mode)
  5. Optional git sync of the export root

Error Semantics:
  - Client errors (including *unimus.APIError) abort the run
  - *DecodeError / *WriteError skip one backup each, the run continues
  - Git failures are recorded on the RunResult, the run still succeeds

Thread Safety:
  - runMu serializes runs; the scheduler never overlaps them, but a manual
    trigger through the ops API must not race a scheduled run
*/

//nolint:staticcheck // File documentation, not package doc
package export

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/logging"
	"github.com/tomtom215/unimus-exporter/internal/metrics"
	models "github.com/tomtom215/unimus-exporter/internal/models/unimus"
	"github.com/tomtom215/unimus-exporter/internal/unimus"
)

// Git outcome values recorded on RunResult.GitResult.
const (
	GitResultPushed = "pushed"
	GitResultClean  = "clean"
	GitResultFailed = "failed"
)

// GitSyncer commits and pushes the export directory after a run.
// Implemented by gitsync.Syncer; nil when export_type is fs.
type GitSyncer interface {
	// Sync stages, commits and pushes pending changes. It returns the number
	// of changed files committed; 0 means the tree was clean and nothing was
	// pushed.
	Sync(ctx context.Context) (int, error)
}

// Exporter orchestrates the export pipeline.
type Exporter struct {
	cfg    *config.Config
	client unimus.ClientInterface
	writer *Writer
	syncer GitSyncer
	status *StatusStore
	runMu  sync.Mutex
}

// NewExporter creates the pipeline from its parts. syncer may be nil when
// git export is disabled; status must not be nil.
func NewExporter(cfg *config.Config, client unimus.ClientInterface, writer *Writer, syncer GitSyncer, status *StatusStore) *Exporter {
	return &Exporter{
		cfg:    cfg,
		client: client,
		writer: writer,
		syncer: syncer,
		status: status,
	}
}

// Run executes one complete export. It always records a RunResult in the
// status store, and returns it together with the fatal error, if any.
// Per-backup decode and write failures are counted on the result but do not
// fail the run.
func (e *Exporter) Run(ctx context.Context) (*RunResult, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	result := &RunResult{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Mode:       e.cfg.Export.BackupType,
		ExportType: e.cfg.Export.Type,
	}

	logging.Info().
		Str("run_id", result.RunID).
		Str("mode", result.Mode).
		Str("export_type", result.ExportType).
		Str("dir", e.writer.Root()).
		Msg("Export run starting")

	if err := e.writer.EnsureRoot(); err != nil {
		return e.finish(result, err)
	}

	// Health gate: never export from a server that is not fully up, its
	// backup data may be incomplete
	if err := e.client.Health(ctx); err != nil {
		return e.finish(result, err)
	}

	devices, err := e.client.ListDevices(ctx)
	if err != nil {
		return e.finish(result, err)
	}
	result.Devices = len(devices)

	if result.Mode == config.BackupTypeLatest {
		err = e.exportLatest(ctx, result, devices)
	} else {
		err = e.exportAll(ctx, result, devices)
	}
	if err != nil {
		return e.finish(result, err)
	}

	e.syncGit(ctx, result)

	return e.finish(result, nil)
}

// exportLatest fetches the newest backup per device and writes each with
// replace semantics.
func (e *Exporter) exportLatest(ctx context.Context, result *RunResult, devices []models.Device) error {
	latest, err := e.client.ListLatestBackups(ctx)
	if err != nil {
		return err
	}

	byID := make(map[int64]models.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}

	for _, entry := range latest {
		device, ok := byID[entry.DeviceID]
		if !ok {
			// Device appeared between the two listings; name it by id only
			device = models.Device{ID: entry.DeviceID}
		}
		e.exportOne(result, device, entry.Backup, true)
	}

	return nil
}

// exportAll fetches every retained backup for every device and writes each
// with accumulate semantics.
func (e *Exporter) exportAll(ctx context.Context, result *RunResult, devices []models.Device) error {
	for _, device := range devices {
		backups, err := e.client.ListDeviceBackups(ctx, device.ID)
		if err != nil {
			return err
		}

		for _, b := range backups {
			e.exportOne(result, device, b, false)
		}
	}

	return nil
}

// exportOne decodes and writes a single backup, updating the run counters.
// Decode and write failures are logged and counted, never propagated.
func (e *Exporter) exportOne(result *RunResult, device models.Device, b models.Backup, latest bool) {
	if b.ID == 0 && b.Bytes == "" {
		logging.Debug().
			Int64("device_id", device.ID).
			Msg("Device has no backup content, skipping")
		result.Skipped++
		metrics.RecordBackupSkipped("empty")
		return
	}

	data, err := DecodeBackup(device.ID, b)
	if err != nil {
		logging.Warn().Err(err).
			Int64("device_id", device.ID).
			Int64("backup_id", b.ID).
			Msg("Backup payload is not decodable, skipping")
		result.Failed++
		metrics.RecordBackupFailed("decode")
		return
	}

	var res WriteResult
	if latest {
		res, err = e.writer.WriteLatest(device, b, data)
	} else {
		res, err = e.writer.Write(device, b, data)
	}
	if err != nil {
		logging.Warn().Err(err).
			Int64("device_id", device.ID).
			Int64("backup_id", b.ID).
			Msg("Backup could not be written, skipping")
		result.Failed++
		metrics.RecordBackupFailed("write")
		return
	}

	if res.Pruned > 0 {
		logging.Debug().
			Int64("device_id", device.ID).
			Int("pruned", res.Pruned).
			Msg("Pruned superseded backup files")
	}

	if res.Written {
		logging.Debug().
			Int64("device_id", device.ID).
			Int64("backup_id", b.ID).
			Str("path", res.Path).
			Int("bytes", len(data)).
			Msg("Backup exported")
		result.Exported++
		metrics.RecordBackupExported(len(data))
	} else {
		result.Skipped++
		metrics.RecordBackupSkipped("exists")
	}
}

// syncGit runs the git syncer and records its outcome. A failed sync never
// fails the run: the filesystem export already stands.
func (e *Exporter) syncGit(ctx context.Context, result *RunResult) {
	if e.syncer == nil || result.ExportType != config.ExportTypeGit {
		return
	}

	committed, err := e.syncer.Sync(ctx)
	switch {
	case err != nil:
		result.GitResult = GitResultFailed
		result.GitError = err.Error()
		logging.Error().Err(err).
			Str("run_id", result.RunID).
			Msg("Git sync failed, filesystem export kept")
	case committed == 0:
		result.GitResult = GitResultClean
		logging.Info().
			Str("run_id", result.RunID).
			Msg("Git tree clean, nothing to push")
	default:
		result.GitResult = GitResultPushed
		logging.Info().
			Str("run_id", result.RunID).
			Int("files", committed).
			Msg("Backups committed and pushed")
	}
}

// finish completes the result, stores it, and records run metrics.
func (e *Exporter) finish(result *RunResult, runErr error) (*RunResult, error) {
	result.FinishedAt = time.Now().UTC()
	result.DurationMs = result.FinishedAt.Sub(result.StartedAt).Milliseconds()
	result.Success = runErr == nil
	if runErr != nil {
		result.Error = runErr.Error()
	}

	e.status.Set(result)
	metrics.RecordExportRun(result.FinishedAt.Sub(result.StartedAt), result.Devices, runErr)

	if runErr != nil {
		logging.Error().Err(runErr).
			Str("run_id", result.RunID).
			Int("devices", result.Devices).
			Int("exported", result.Exported).
			Msg("Export run failed")
	} else {
		logging.Info().
			Str("run_id", result.RunID).
			Int("devices", result.Devices).
			Int("exported", result.Exported).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Int64("duration_ms", result.DurationMs).
			Msg("Export run completed")
	}

	return result, runErr
}
