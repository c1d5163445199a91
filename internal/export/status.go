// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package export

import (
	"sync"
	"time"
)

// RunResult summarizes one finished export run. It is serialized as-is by
// the ops API status endpoint.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
	Mode       string    `json:"mode"`        // "latest" or "all"
	ExportType string    `json:"export_type"` // "fs" or "git"
	Devices    int       `json:"devices"`
	Exported   int       `json:"exported"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	GitResult  string    `json:"git_result,omitempty"` // "pushed", "clean" or "failed"
	GitError   string    `json:"git_error,omitempty"`
	Error      string    `json:"error,omitempty"`
	Success    bool      `json:"success"`
}

// StatusStore keeps the most recent run results in memory for the ops API.
//
// Thread Safety: Set and the accessors may be called concurrently.
type StatusStore struct {
	mu          sync.RWMutex
	last        *RunResult
	lastSuccess *RunResult
}

// NewStatusStore creates an empty store.
func NewStatusStore() *StatusStore {
	return &StatusStore{}
}

// Set records a finished run. The result is copied, so callers may keep
// mutating their own instance.
func (s *StatusStore) Set(result *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *result
	s.last = &copied
	if copied.Success {
		s.lastSuccess = &copied
	}
}

// Last returns the most recent run result. ok is false before the first run
// finishes.
func (s *StatusStore) Last() (RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return RunResult{}, false
	}
	return *s.last, true
}

// LastSuccess returns the most recent successful run result. ok is false
// until a run succeeds. The readiness endpoint uses this to decide whether
// the exporter has ever produced a complete export.
func (s *StatusStore) LastSuccess() (RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastSuccess == nil {
		return RunResult{}, false
	}
	return *s.lastSuccess, true
}
