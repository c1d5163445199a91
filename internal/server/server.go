// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/export"
)

// HealthChecker pings the Unimus server. Implemented by unimus.Client; the
// readiness probe uses it before the first export run has completed.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server serves the operational endpoints: health probes, last-run status
// and Prometheus metrics.
type Server struct {
	cfg       config.ServerConfig
	status    *export.StatusStore
	checker   HealthChecker
	version   string
	startTime time.Time
}

// NewServer creates the ops server. checker may be nil, in which case
// readiness depends solely on a completed export run.
func NewServer(cfg config.ServerConfig, status *export.StatusStore, checker HealthChecker, version string) *Server {
	return &Server{
		cfg:       cfg,
		status:    status,
		checker:   checker,
		version:   version,
		startTime: time.Now(),
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr()
}

// Timeout returns the configured request timeout, used for both server
// read/write deadlines and graceful shutdown.
func (s *Server) Timeout() time.Duration {
	return s.cfg.Timeout
}

// Handler builds the ops router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)
	r.Use(metricsMiddleware)
	r.Use(rateLimiter())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health/live", s.handleLive)
		r.Get("/health/ready", s.handleReady)
		r.Get("/status", s.handleStatus)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// handleLive reports process liveness. It never checks dependencies: a dead
// Unimus server must not restart the exporter pod.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &apiResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":   true,
			"version": s.version,
			"uptime":  time.Since(s.startTime).Seconds(),
		},
		Metadata: metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// handleReady reports readiness. The exporter is ready once an export run
// has succeeded; before that, a reachable healthy Unimus server counts, so
// fresh deployments go ready without waiting a full schedule interval.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	_, hasSuccess := s.status.LastSuccess()

	unimusHealthy := false
	if !hasSuccess && s.checker != nil {
		unimusHealthy = s.checker.Health(r.Context()) == nil
	}

	ready := hasSuccess || unimusHealthy
	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	data := map[string]interface{}{
		"ready_to_serve":   ready,
		"export_succeeded": hasSuccess,
		"uptime":           time.Since(s.startTime).Seconds(),
	}
	if !hasSuccess {
		data["unimus_reachable"] = unimusHealthy
	}

	respondJSON(w, statusCode, &apiResponse{
		Status: status,
		Data:   data,
		Metadata: metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// handleStatus returns the result of the most recent export run.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	last, ok := s.status.Last()
	if !ok {
		respondError(w, http.StatusNotFound, "NO_RUNS", "No export run has completed yet")
		return
	}

	respondJSON(w, http.StatusOK, &apiResponse{
		Status: "success",
		Data:   last,
		Metadata: metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
