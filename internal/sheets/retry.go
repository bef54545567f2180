package sheets

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/auditnote/auditnote-api/pkg/logger"
)

// RetryingStore retries rate-limited calls with exponential backoff. Any
// other failure is returned on the first attempt.
type RetryingStore struct {
	next     Store
	attempts int
	base     time.Duration
}

// NewRetryingStore allows up to attempts tries, waiting base, 2*base, ...
func NewRetryingStore(next Store, attempts int, base time.Duration) *RetryingStore {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = time.Second
	}
	return &RetryingStore{next: next, attempts: attempts, base: base}
}

func (r *RetryingStore) EnsureTable(ctx context.Context, name string, header []string) error {
	return r.do(ctx, "ensure_table", name, func(ctx context.Context) error {
		return r.next.EnsureTable(ctx, name, header)
	})
}

func (r *RetryingStore) ReadAll(ctx context.Context, name string) ([]Row, error) {
	var rows []Row
	err := r.do(ctx, "read_all", name, func(ctx context.Context) error {
		var err error
		rows, err = r.next.ReadAll(ctx, name)
		return err
	})
	return rows, err
}

func (r *RetryingStore) AppendRow(ctx context.Context, name string, values []string) error {
	return r.do(ctx, "append_row", name, func(ctx context.Context) error {
		return r.next.AppendRow(ctx, name, values)
	})
}

func (r *RetryingStore) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	return r.do(ctx, "update_cell", name, func(ctx context.Context) error {
		return r.next.UpdateCell(ctx, name, row, col, value)
	})
}

func (r *RetryingStore) do(ctx context.Context, op, table string, fn retry.RetryFunc) error {
	backoff := retry.WithMaxRetries(uint64(r.attempts-1), retry.NewExponential(r.base))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil && IsRateLimited(err) && attempt < r.attempts {
			logger.Warn("Rate limited, backing off", "op", op, "table", table, "attempt", attempt)
			return retry.RetryableError(err)
		}
		return err
	})
}
