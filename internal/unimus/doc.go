// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

/*
Package unimus provides the HTTP client for the Unimus REST API v2.

# Overview

The client authenticates with a Bearer token and exposes the four read
operations the exporter needs:

  - Health: connectivity and server status gate
  - ListDevices: full device inventory
  - ListDeviceBackups: every retained backup for one device
  - ListLatestBackups: newest backup per device across the inventory

List operations consume the API's zero-based pagination internally and return
fully accumulated slices in page order. Callers never see page boundaries.

# Authentication

Every request carries:

	Authorization: Bearer <api key>
	Accept: application/json

API tokens are created in the Unimus UI under Settings > API tokens.

# Error Handling

HTTP transport failures are returned as wrapped errors. Responses outside the
2xx range and health probes reporting a non-OK server status are returned as
*APIError, which the export pipeline treats as fatal for the current run:

	devices, err := client.ListDevices(ctx)
	var apiErr *unimus.APIError
	if errors.As(err, &apiErr) {
	    // abort the run, the server is unhealthy or rejecting us
	}

# Rate Limiting

The client optionally paces its own requests via a token bucket
(unimus_requests_per_second). Pacing applies per client instance and keeps a
large inventory export from hammering the Unimus server. Zero disables pacing.

There is no retry logic. A failed request fails the operation and the caller
decides whether the run continues.

# See Also

  - internal/models/unimus: response envelope and entity types
  - internal/export: pipeline consuming this client
  - https://wiki.unimus.net/display/UNPUB/REST+API: upstream API reference
*/
package unimus
