// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

/*
client.go - Core Unimus API Client

This file provides the Client struct and HTTP communication layer for the
Unimus REST API v2.

Client Features:
  - HTTP client with configurable timeout
  - Bearer token authentication
  - Optional client-side request pacing (token bucket)
  - JSON response parsing into typed envelopes
  - Context support for cancellation and timeouts
  - Internal pagination for all list operations

Deliberately absent: retries and backoff. A failed request fails the
operation and the export pipeline treats it as fatal for the current run.
*/

//nolint:staticcheck // File documentation, not package doc
package unimus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/metrics"
	models "github.com/tomtom215/unimus-exporter/internal/models/unimus"
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
// This prevents unbounded memory allocation when reading large error responses
const maxErrorBodySize = 64 * 1024 // 64KB

// defaultPageSize is used when the configuration does not set one.
const defaultPageSize = 50

// API path templates. Used verbatim as request paths where no parameters
// apply, and as low-cardinality endpoint labels in errors and metrics.
const (
	endpointHealth        = "/health"
	endpointDevices       = "/devices"
	endpointDeviceBackups = "/devices/{id}/backups"
	endpointLatestBackups = "/devices/backups/latest"
)

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
// Uses io.LimitReader to prevent unbounded memory allocation
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	// If we hit the limit, indicate truncation
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// APIError describes a Unimus API request that completed with an unexpected
// result: a response status outside the 2xx range, or a health probe whose
// body reports a non-OK server status.
//
// The export pipeline treats an APIError as fatal for the current run.
type APIError struct {
	Endpoint   string // API path template, e.g. "/devices/{id}/backups"
	StatusCode int    // HTTP status, 0 when the failure is not an HTTP status
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("unimus api: GET %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("unimus api: GET %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// ClientInterface defines the Unimus API operations used by the export
// pipeline.
//
// This interface is implemented by Client for production use and by fake
// implementations for testing.
//
// All methods follow a consistent pattern:
//   - Accept context.Context as first parameter for cancellation/timeout support
//   - Return typed structs from internal/models/unimus
//   - Return error on HTTP failures, API errors, or JSON parse failures
//
// Thread Safety: All methods are safe for concurrent use.
type ClientInterface interface {
	Health(ctx context.Context) error
	ListDevices(ctx context.Context) ([]models.Device, error)
	ListDeviceBackups(ctx context.Context, deviceID int64) ([]models.Backup, error)
	ListLatestBackups(ctx context.Context) ([]models.DeviceLatestBackup, error)
}

// Client handles communication with the Unimus REST API v2.
//
// This client implements ClientInterface and provides the read operations
// used by the export pipeline. List operations page through results
// internally, starting at page 0 and stopping at the first short or empty
// page (or when the paginator reports the last page).
//
// Thread Safety: Safe for concurrent use. Each request creates its own HTTP request.
//
// Example:
//
//	client := unimus.NewClient(&cfg.Unimus)
//	if err := client.Health(ctx); err != nil {
//	    log.Fatal("Unimus not ready:", err)
//	}
//	devices, err := client.ListDevices(ctx)
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	pageSize int
	limiter  *rate.Limiter // nil when pacing is disabled
}

// NewClient creates a Unimus API client from the provided configuration.
//
// The client is configured with:
//   - HTTP timeout from unimus_timeout (default 30s)
//   - Page size from unimus_page_size (default 50)
//   - Optional request pacing from unimus_requests_per_second (0 = unlimited)
func NewClient(cfg *config.UnimusConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:  cfg.BaseURL(),
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		limiter:  limiter,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// get is a generic helper that handles common Unimus API request boilerplate.
// It paces the request when a limiter is configured, builds the URL, sets the
// auth headers, checks the HTTP status, and decodes the JSON response.
//
// Parameters:
//   - ctx: Context for cancellation and timeout support
//   - path: Concrete request path under /api/v2 (e.g. "/devices/12/backups")
//   - endpoint: Path template used for errors and metric labels
//   - params: Optional URL parameters
//   - result: Pointer to response struct that will be populated
//
// Returns *APIError for responses outside the 2xx range and wrapped errors
// for transport or decode failures.
func (c *Client) get(ctx context.Context, path, endpoint string, params url.Values, result interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	reqURL := fmt.Sprintf("%s/api/v2%s", c.baseURL, path)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordUnimusRequest(endpoint, "0", duration, err)
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	statusCode := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		apiErr := &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
		metrics.RecordUnimusRequest(endpoint, statusCode, duration, apiErr)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		decodeErr := fmt.Errorf("decode %s response: %w", endpoint, err)
		metrics.RecordUnimusRequest(endpoint, statusCode, duration, decodeErr)
		return decodeErr
	}

	metrics.RecordUnimusRequest(endpoint, statusCode, duration, nil)
	return nil
}

// pageParams builds the query parameters for one page request.
func (c *Client) pageParams(page int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(c.pageSize))
	return params
}

// lastPage reports whether a fetched page ends the pagination loop. A short
// or empty page always does; otherwise the server's paginator decides.
func (c *Client) lastPage(itemCount int, p models.Paginator) bool {
	return itemCount < c.pageSize || p.LastPage()
}

// Health verifies connectivity to the Unimus API and that the server reports
// an OK status. Exports must not start against a server in any other state
// (for example LICENSING_UNREACHABLE), because backup data may be incomplete.
func (c *Client) Health(ctx context.Context) error {
	var resp models.HealthResponse
	if err := c.get(ctx, endpointHealth, endpointHealth, nil, &resp); err != nil {
		return err
	}

	if !resp.Data.IsOK() {
		return &APIError{
			Endpoint: endpointHealth,
			Message:  fmt.Sprintf("server reports status %q", resp.Data.Status),
		}
	}

	return nil
}

// ListDevices returns every device known to Unimus, in page order.
func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device

	for page := 0; ; page++ {
		var resp models.DevicesResponse
		if err := c.get(ctx, endpointDevices, endpointDevices, c.pageParams(page), &resp); err != nil {
			return nil, err
		}

		devices = append(devices, resp.Data...)
		if c.lastPage(len(resp.Data), resp.Paginator) {
			break
		}
	}

	return devices, nil
}

// ListDeviceBackups returns every backup Unimus retains for one device, in
// page order. Used in "all" export mode.
func (c *Client) ListDeviceBackups(ctx context.Context, deviceID int64) ([]models.Backup, error) {
	var backups []models.Backup
	path := fmt.Sprintf("/devices/%d/backups", deviceID)

	for page := 0; ; page++ {
		var resp models.DeviceBackupsResponse
		if err := c.get(ctx, path, endpointDeviceBackups, c.pageParams(page), &resp); err != nil {
			return nil, err
		}

		backups = append(backups, resp.Data...)
		if c.lastPage(len(resp.Data), resp.Paginator) {
			break
		}
	}

	return backups, nil
}

// ListLatestBackups returns the newest backup for each device that has one,
// in page order. Used in "latest" export mode; devices without any backup do
// not appear in the result.
func (c *Client) ListLatestBackups(ctx context.Context) ([]models.DeviceLatestBackup, error) {
	var latest []models.DeviceLatestBackup

	for page := 0; ; page++ {
		var resp models.LatestBackupsResponse
		if err := c.get(ctx, endpointLatestBackups, endpointLatestBackups, c.pageParams(page), &resp); err != nil {
			return nil, err
		}

		latest = append(latest, resp.Data...)
		if c.lastPage(len(resp.Data), resp.Paginator) {
			break
		}
	}

	return latest, nil
}
