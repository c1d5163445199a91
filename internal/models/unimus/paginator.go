// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

// Paginator describes the paging envelope returned by every Unimus list
// endpoint. Pages are zero-based.
type Paginator struct {
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// LastPage reports whether this page is the final one. Servers that omit
// paginator metadata report zero totals; callers should then fall back to
// stopping on the first empty page.
func (p Paginator) LastPage() bool {
	return p.TotalPages > 0 && p.Page >= p.TotalPages-1
}
