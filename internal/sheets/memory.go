package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps tables in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][][]string)}
}

func (m *MemoryStore) EnsureTable(_ context.Context, name string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	grid, ok := m.tables[name]
	if !ok || len(grid) == 0 {
		m.tables[name] = [][]string{cloneStrings(header)}
		return nil
	}
	if !headerMatches(grid[0], header) {
		grid[0] = cloneStrings(header)
	}
	return nil
}

func (m *MemoryStore) ReadAll(_ context.Context, name string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	grid, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return toRows(grid), nil
}

func (m *MemoryStore) AppendRow(_ context.Context, name string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	grid, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	m.tables[name] = append(grid, cloneStrings(values))
	return nil
}

func (m *MemoryStore) UpdateCell(_ context.Context, name string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	grid, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	r := row + 1
	if row < 0 || r >= len(grid) || col < 0 || col >= len(grid[0]) {
		return fmt.Errorf("%w: %s[%d,%d]", ErrOutOfRange, name, row, col)
	}
	for len(grid[r]) <= col {
		grid[r] = append(grid[r], "")
	}
	grid[r][col] = value
	return nil
}

// RowCount returns the number of data rows in a table
func (m *MemoryStore) RowCount(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if grid, ok := m.tables[name]; ok && len(grid) > 0 {
		return len(grid) - 1
	}
	return 0
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
