// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/export"
)

type fakeRunner struct {
	runs int64
	err  error
}

func (f *fakeRunner) Run(_ context.Context) (*export.RunResult, error) {
	atomic.AddInt64(&f.runs, 1)
	return &export.RunResult{RunID: "test"}, f.err
}

func (f *fakeRunner) count() int64 {
	return atomic.LoadInt64(&f.runs)
}

// blockingRunner waits for cancellation, simulating a run cut short by
// shutdown.
type blockingRunner struct {
	started chan struct{}
}

func (b *blockingRunner) Run(ctx context.Context) (*export.RunResult, error) {
	close(b.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestExportService_RunOnce(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewExportService(runner, config.ScheduleConfig{
		Interval: time.Hour,
		RunOnce:  true,
	})

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrTerminateSupervisorTree) {
		t.Errorf("Expected tree termination, got %v", err)
	}
	if runner.count() != 1 {
		t.Errorf("Expected exactly 1 run, got %d", runner.count())
	}
}

func TestExportService_RunsOnSchedule(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewExportService(runner, config.ScheduleConfig{
		Interval: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}

	// One immediate run plus at least two ticks
	if runner.count() < 3 {
		t.Errorf("Expected at least 3 runs, got %d", runner.count())
	}
}

func TestExportService_FailedRunKeepsSchedule(t *testing.T) {
	runner := &fakeRunner{err: errors.New("unimus api: GET /health returned status 503")}
	svc := NewExportService(runner, config.ScheduleConfig{
		Interval: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	// A failing upstream must not crash the service into suture's backoff;
	// the schedule keeps ticking until shutdown
	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if runner.count() < 3 {
		t.Errorf("Expected runs to continue after failures, got %d", runner.count())
	}
}

func TestExportService_CancelDuringRun(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{})}
	svc := NewExportService(runner, config.ScheduleConfig{
		Interval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	<-runner.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Service did not stop after cancellation")
	}
}

func TestExportService_String(t *testing.T) {
	svc := NewExportService(&fakeRunner{}, config.ScheduleConfig{Interval: time.Hour})

	if svc.String() != "export-scheduler" {
		t.Errorf("Unexpected service name %q", svc.String())
	}
}
