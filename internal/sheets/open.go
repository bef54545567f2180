package sheets

import (
	"context"
	"fmt"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/database"
	"github.com/auditnote/auditnote-api/internal/googleauth"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// Open builds the configured backend wrapped in the retry and cache
// layers. The returned func releases backend resources.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	backend, closeFn, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Opened table store", "backend", cfg.TableBackend)

	var store Store = NewRetryingStore(backend, cfg.SheetsRetryAttempts, cfg.SheetsRetryBase)
	if cfg.SheetsCacheTTL > 0 {
		store = NewCachedStore(store, cfg.SheetsCacheSize, cfg.SheetsCacheTTL)
	}
	return store, closeFn, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.TableBackend {
	case config.BackendGoogle:
		opts, err := googleauth.ClientOptions(cfg)
		if err != nil {
			return nil, nil, err
		}
		s, err := NewGoogleStore(ctx, cfg.SpreadsheetID, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case config.BackendXLSX:
		s, err := NewXLSXStore(cfg.XLSXPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.BackendPostgres:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(db), func() error { return database.Close(db) }, nil

	case config.BackendMemory:
		return NewMemoryStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown table backend %q", cfg.TableBackend)
}
