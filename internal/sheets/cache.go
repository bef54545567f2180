package sheets

import (
	"context"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedStore serves ReadAll from a per-table cache. Every write through
// the store drops that table's entry in the same call.
type CachedStore struct {
	next  Store
	cache *expirable.LRU[string, []Row]
}

// NewCachedStore wraps next with a read-through cache of the given TTL
func NewCachedStore(next Store, size int, ttl time.Duration) *CachedStore {
	if size <= 0 {
		size = 16
	}
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[string, []Row](size, nil, ttl),
	}
}

func (c *CachedStore) EnsureTable(ctx context.Context, name string, header []string) error {
	defer c.cache.Remove(name)
	return c.next.EnsureTable(ctx, name, header)
}

func (c *CachedStore) ReadAll(ctx context.Context, name string) ([]Row, error) {
	if rows, ok := c.cache.Get(name); ok {
		return cloneRows(rows), nil
	}
	rows, err := c.next.ReadAll(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, rows)
	return cloneRows(rows), nil
}

func (c *CachedStore) AppendRow(ctx context.Context, name string, values []string) error {
	defer c.cache.Remove(name)
	return c.next.AppendRow(ctx, name, values)
}

func (c *CachedStore) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	defer c.cache.Remove(name)
	return c.next.UpdateCell(ctx, name, row, col, value)
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = maps.Clone(r)
	}
	return out
}
