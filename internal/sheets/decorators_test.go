package sheets

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	Store
	reads   atomic.Int32
	appends atomic.Int32
	failN   int32
	failErr error
}

func (c *countingStore) ReadAll(ctx context.Context, name string) ([]Row, error) {
	n := c.reads.Add(1)
	if n <= c.failN {
		return nil, c.failErr
	}
	return c.Store.ReadAll(ctx, name)
}

func (c *countingStore) AppendRow(ctx context.Context, name string, values []string) error {
	n := c.appends.Add(1)
	if n <= c.failN {
		return c.failErr
	}
	return c.Store.AppendRow(ctx, name, values)
}

func seeded(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	require.NoError(t, m.EnsureTable(context.Background(), "T", []string{"a"}))
	return m
}

func TestCachedStore_ReadThroughAndWritesDropEntry(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: seeded(t)}
	cache := NewCachedStore(inner, 4, time.Minute)

	_, err := cache.ReadAll(ctx, "T")
	require.NoError(t, err)
	_, err = cache.ReadAll(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.reads.Load())

	require.NoError(t, cache.AppendRow(ctx, "T", []string{"x"}))
	rows, err := cache.ReadAll(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.reads.Load())
	require.Len(t, rows, 1)

	// Callers get copies.
	rows[0]["a"] = "mutated"
	again, err := cache.ReadAll(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, "x", again[0]["a"])

	require.NoError(t, cache.EnsureTable(ctx, "T", []string{"a", "b"}))
	_, err = cache.ReadAll(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.reads.Load())
}

func TestCachedStore_Expires(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: seeded(t)}
	cache := NewCachedStore(inner, 4, 20*time.Millisecond)

	_, _ = cache.ReadAll(ctx, "T")
	time.Sleep(60 * time.Millisecond)
	_, _ = cache.ReadAll(ctx, "T")
	assert.Equal(t, int32(2), inner.reads.Load())
}

func TestRetryingStore(t *testing.T) {
	ctx := context.Background()
	limited := fmt.Errorf("%w: quota exceeded", ErrRateLimited)

	t.Run("recovers after rate limiting", func(t *testing.T) {
		inner := &countingStore{Store: seeded(t), failN: 2, failErr: limited}
		store := NewRetryingStore(inner, 5, time.Millisecond)

		require.NoError(t, store.AppendRow(ctx, "T", []string{"x"}))
		assert.Equal(t, int32(3), inner.appends.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		inner := &countingStore{Store: seeded(t), failN: 100, failErr: limited}
		store := NewRetryingStore(inner, 3, time.Millisecond)

		_, err := store.ReadAll(ctx, "T")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, int32(3), inner.reads.Load())
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		boom := errors.New("permission denied")
		inner := &countingStore{Store: seeded(t), failN: 100, failErr: boom}
		store := NewRetryingStore(inner, 5, time.Millisecond)

		err := store.AppendRow(ctx, "T", []string{"x"})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int32(1), inner.appends.Load())
	})
}
