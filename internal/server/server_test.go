// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/export"
)

type fakeChecker struct {
	err   error
	calls int
}

func (f *fakeChecker) Health(_ context.Context) error {
	f.calls++
	return f.err
}

func newTestServer(t *testing.T, store *export.StatusStore, checker HealthChecker) *httptest.Server {
	t.Helper()

	s := NewServer(config.ServerConfig{
		Host:    "127.0.0.1",
		Port:    8950,
		Timeout: 30 * time.Second,
	}, store, checker, "1.0.0")

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string) (int, apiResponse) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.StatusCode, envelope
}

func TestServer_HealthLive(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	status, envelope := getJSON(t, ts.URL+"/api/v1/health/live")
	if status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}
	if envelope.Status != "success" {
		t.Errorf("Expected status success, got %q", envelope.Status)
	}

	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data object, got %T", envelope.Data)
	}
	if data["alive"] != true {
		t.Error("Expected alive=true")
	}
	if data["version"] != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %v", data["version"])
	}
}

func TestServer_RequestIDHeader(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	resp, err := http.Get(ts.URL + "/api/v1/health/live")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("Expected Cache-Control no-store, got %q", resp.Header.Get("Cache-Control"))
	}
}

func TestServer_HealthReady_BeforeFirstRun(t *testing.T) {
	checker := &fakeChecker{}
	ts := newTestServer(t, export.NewStatusStore(), checker)

	status, envelope := getJSON(t, ts.URL+"/api/v1/health/ready")
	if status != http.StatusOK {
		t.Errorf("Expected 200 with a healthy Unimus server, got %d", status)
	}
	if envelope.Status != "ready" {
		t.Errorf("Expected status ready, got %q", envelope.Status)
	}
	if checker.calls != 1 {
		t.Errorf("Expected 1 health check, got %d", checker.calls)
	}

	data := envelope.Data.(map[string]interface{})
	if data["unimus_reachable"] != true {
		t.Error("Expected unimus_reachable=true")
	}
	if data["export_succeeded"] != false {
		t.Error("Expected export_succeeded=false")
	}
}

func TestServer_HealthReady_UnimusDown(t *testing.T) {
	checker := &fakeChecker{err: errors.New("connection refused")}
	ts := newTestServer(t, export.NewStatusStore(), checker)

	status, envelope := getJSON(t, ts.URL+"/api/v1/health/ready")
	if status != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", status)
	}
	if envelope.Status != "not_ready" {
		t.Errorf("Expected status not_ready, got %q", envelope.Status)
	}
}

func TestServer_HealthReady_AfterSuccessfulRun(t *testing.T) {
	store := export.NewStatusStore()
	store.Set(&export.RunResult{RunID: "run-1", Success: true})

	// A down Unimus server must not flip readiness once an export succeeded
	checker := &fakeChecker{err: errors.New("connection refused")}
	ts := newTestServer(t, store, checker)

	status, envelope := getJSON(t, ts.URL+"/api/v1/health/ready")
	if status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}
	if checker.calls != 0 {
		t.Errorf("Checker must not run after a successful export, got %d calls", checker.calls)
	}

	data := envelope.Data.(map[string]interface{})
	if data["export_succeeded"] != true {
		t.Error("Expected export_succeeded=true")
	}
	if _, present := data["unimus_reachable"]; present {
		t.Error("unimus_reachable must be omitted when the check is skipped")
	}
}

func TestServer_HealthReady_NilChecker(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	status, _ := getJSON(t, ts.URL+"/api/v1/health/ready")
	if status != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a checker or a successful run, got %d", status)
	}
}

func TestServer_Status_NoRuns(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	status, envelope := getJSON(t, ts.URL+"/api/v1/status")
	if status != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", status)
	}
	if envelope.Error == nil || envelope.Error.Code != "NO_RUNS" {
		t.Errorf("Expected NO_RUNS error, got %+v", envelope.Error)
	}
}

func TestServer_Status_ReturnsLastRun(t *testing.T) {
	store := export.NewStatusStore()
	now := time.Now().UTC()
	store.Set(&export.RunResult{
		RunID:      "run-1",
		StartedAt:  now.Add(-2 * time.Second),
		FinishedAt: now,
		DurationMs: 2000,
		Mode:       "latest",
		ExportType: "git",
		Devices:    3,
		Exported:   2,
		Skipped:    1,
		GitResult:  "pushed",
		Success:    true,
	})

	ts := newTestServer(t, store, nil)

	status, envelope := getJSON(t, ts.URL+"/api/v1/status")
	if status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}

	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data object, got %T", envelope.Data)
	}
	if data["run_id"] != "run-1" {
		t.Errorf("Expected run-1, got %v", data["run_id"])
	}
	if data["devices"] != float64(3) {
		t.Errorf("Expected 3 devices, got %v", data["devices"])
	}
	if data["git_result"] != "pushed" {
		t.Errorf("Expected git_result pushed, got %v", data["git_result"])
	}
	if data["success"] != true {
		t.Error("Expected success=true")
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "app_uptime_seconds") {
		t.Error("Expected exporter metrics in /metrics output")
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	resp, err := http.Post(ts.URL+"/api/v1/status", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	resp, err := http.Get(ts.URL + "/api/v1/devices")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestServer_RateLimit(t *testing.T) {
	ts := newTestServer(t, export.NewStatusStore(), nil)

	var last int
	for i := 0; i < rateLimitRequests+1; i++ {
		resp, err := http.Get(ts.URL + "/api/v1/health/live")
		if err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
		last = resp.StatusCode
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after exceeding the limit, got %d", last)
	}
}

func TestServer_Addr(t *testing.T) {
	s := NewServer(config.ServerConfig{Host: "0.0.0.0", Port: 8950, Timeout: 30 * time.Second},
		export.NewStatusStore(), nil, "1.0.0")

	if s.Addr() != "0.0.0.0:8950" {
		t.Errorf("Expected 0.0.0.0:8950, got %q", s.Addr())
	}
	if s.Timeout() != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", s.Timeout())
	}
}
