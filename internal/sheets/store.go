// Package sheets provides header-defined row tables over a spreadsheet
// service or a local substitute.
package sheets

import (
	"context"
	"errors"
	"strings"
)

// Row maps a lowercased header name to its cell value
type Row map[string]string

// Store is a set of named tables, each a header row followed by data rows.
// Row and column indexes passed to UpdateCell are zero-based and exclude the
// header row.
type Store interface {
	EnsureTable(ctx context.Context, name string, header []string) error
	ReadAll(ctx context.Context, name string) ([]Row, error)
	AppendRow(ctx context.Context, name string, values []string) error
	UpdateCell(ctx context.Context, name string, row, col int, value string) error
}

var (
	ErrTableNotFound = errors.New("table not found")
	ErrOutOfRange    = errors.New("cell out of range")
	ErrRateLimited   = errors.New("too many requests")
)

// IsRateLimited reports whether err is a transient rate-limit failure
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// headerMatches compares header rows case-insensitively
func headerMatches(current, want []string) bool {
	if len(current) != len(want) {
		return false
	}
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(current[i]), strings.TrimSpace(want[i])) {
			return false
		}
	}
	return true
}

// toRows converts a raw grid (header first) into keyed rows. Short rows
// are padded with empty strings; a grid with only a header yields no rows.
func toRows(grid [][]string) []Row {
	if len(grid) <= 1 {
		return []Row{}
	}
	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	rows := make([]Row, 0, len(grid)-1)
	for _, values := range grid[1:] {
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
