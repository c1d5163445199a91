// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package testinfra

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	models "github.com/tomtom215/unimus-exporter/internal/models/unimus"
)

// DefaultAPIKey is the bearer token MockUnimus accepts unless overridden.
const DefaultAPIKey = "test-api-token-0123456789abcdef"

// RequestCapture records one request the mock server received.
type RequestCapture struct {
	Method string
	Path   string
	Query  url.Values
}

// MockUnimus is a mock Unimus REST API v2 server backed by in-memory
// fixtures. It captures all incoming requests for verification.
type MockUnimus struct {
	Server *httptest.Server
	APIKey string

	mu       sync.Mutex
	devices  []models.Device
	backups  map[int64][]models.Backup
	captures []RequestCapture

	// healthStatus is what /health reports. Default: "OK".
	healthStatus string

	// failStatus, when non-zero, makes every endpoint return that HTTP
	// status with failBody as the response body.
	failStatus int
	failBody   string
}

// NewMockUnimus creates a started mock server. Callers own its lifecycle
// and must Close it.
func NewMockUnimus(t *testing.T) *MockUnimus {
	t.Helper()

	m := &MockUnimus{
		APIKey:       DefaultAPIKey,
		backups:      make(map[int64][]models.Backup),
		healthStatus: "OK",
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the server base URL, suitable for config.UnimusConfig.Address.
func (m *MockUnimus) URL() string {
	return m.Server.URL
}

// Close shuts down the server.
func (m *MockUnimus) Close() {
	m.Server.Close()
}

// AddDevice registers a device and its stored backups. Backups are served
// in the given order; the latest-backup endpoint picks the one with the
// newest validSince.
func (m *MockUnimus) AddDevice(device models.Device, backups ...models.Backup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = append(m.devices, device)
	m.backups[device.ID] = append(m.backups[device.ID], backups...)
}

// SetHealthStatus overrides the status string /health reports.
func (m *MockUnimus) SetHealthStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// FailWith makes every subsequent request return the given HTTP status and
// body. A status of 0 restores normal operation.
func (m *MockUnimus) FailWith(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
	m.failBody = body
}

// Requests returns all captured requests.
func (m *MockUnimus) Requests() []RequestCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]RequestCapture, len(m.captures))
	copy(result, m.captures)
	return result
}

// RequestCount returns how many requests hit the given path.
func (m *MockUnimus) RequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.captures {
		if c.Path == path {
			n++
		}
	}
	return n
}

func (m *MockUnimus) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.captures = append(m.captures, RequestCapture{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
	})
	apiKey := m.APIKey
	failStatus := m.failStatus
	failBody := m.failBody
	health := m.healthStatus
	devices := make([]models.Device, len(m.devices))
	copy(devices, m.devices)
	backups := make(map[int64][]models.Backup, len(m.backups))
	for id, b := range m.backups {
		backups[id] = b
	}
	m.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+apiKey {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	if failStatus != 0 {
		http.Error(w, failBody, failStatus)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v2")
	switch {
	case path == "/health":
		writeJSON(w, models.HealthResponse{Data: models.HealthStatus{Status: health}})

	case path == "/devices":
		page, paginator := paginate(devices, r.URL.Query())
		writeJSON(w, models.DevicesResponse{Paginator: paginator, Data: page})

	case path == "/devices/backups/latest":
		page, paginator := paginate(latestBackups(devices, backups), r.URL.Query())
		writeJSON(w, models.LatestBackupsResponse{Paginator: paginator, Data: page})

	case strings.HasPrefix(path, "/devices/") && strings.HasSuffix(path, "/backups"):
		idStr := strings.TrimSuffix(strings.TrimPrefix(path, "/devices/"), "/backups")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid device id", http.StatusBadRequest)
			return
		}
		page, paginator := paginate(backups[id], r.URL.Query())
		writeJSON(w, models.DeviceBackupsResponse{Paginator: paginator, Data: page})

	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// latestBackups builds the latest-backup listing the way Unimus does:
// devices without any backup are absent from the result.
func latestBackups(devices []models.Device, backups map[int64][]models.Backup) []models.DeviceLatestBackup {
	var latest []models.DeviceLatestBackup
	for _, d := range devices {
		stored := backups[d.ID]
		if len(stored) == 0 {
			continue
		}
		newest := stored[0]
		for _, b := range stored[1:] {
			if b.ValidSince > newest.ValidSince ||
				(b.ValidSince == newest.ValidSince && b.ID > newest.ID) {
				newest = b
			}
		}
		latest = append(latest, models.DeviceLatestBackup{DeviceID: d.ID, Backup: newest})
	}
	return latest
}

// paginate slices items according to the page/size query parameters and
// fills in the paginator envelope.
func paginate[T any](items []T, query url.Values) ([]T, models.Paginator) {
	page, _ := strconv.Atoi(query.Get("page"))
	size, _ := strconv.Atoi(query.Get("size"))
	if size <= 0 {
		size = 50
	}

	totalPages := (len(items) + size - 1) / size
	paginator := models.Paginator{
		Page:          page,
		Size:          size,
		TotalPages:    totalPages,
		TotalElements: len(items),
	}

	start := page * size
	if start >= len(items) {
		return nil, paginator
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], paginator
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(fmt.Sprintf("encode mock response: %v", err))
	}
}
