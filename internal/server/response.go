// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package server

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/unimus-exporter/internal/logging"
)

// apiResponse is the envelope for every JSON response.
type apiResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata metadata    `json:"metadata"`
	Error    *apiError   `json:"error,omitempty"`
}

type metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// apiError carries a machine-readable code alongside the human message.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON sends a JSON response with proper headers. Probe and status
// responses must never be cached.
func respondJSON(w http.ResponseWriter, status int, response *apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &apiResponse{
		Status: "error",
		Metadata: metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	})
}
