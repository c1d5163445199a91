// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package unimus

import "testing"

func TestPaginatorLastPage(t *testing.T) {
	tests := []struct {
		name string
		p    Paginator
		want bool
	}{
		{"first of three", Paginator{Page: 0, TotalPages: 3}, false},
		{"middle page", Paginator{Page: 1, TotalPages: 3}, false},
		{"final page", Paginator{Page: 2, TotalPages: 3}, true},
		{"single page", Paginator{Page: 0, TotalPages: 1}, true},
		{"no metadata", Paginator{Page: 5, TotalPages: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.LastPage(); got != tt.want {
				t.Errorf("LastPage() = %v, want %v", got, tt.want)
			}
		})
	}
}
