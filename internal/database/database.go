package database

import (
	"context"
	"fmt"
	"time"

	"github.com/auditnote/auditnote-api/internal/config"
	pkgLogger "github.com/auditnote/auditnote-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes query logging and the connection pool
type Options struct {
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
	MaxIdleConns  int
	MaxOpenConns  int
	ConnLifetime  time.Duration
	ConnIdleTime  time.Duration
}

// OptionsFor derives settings from the deployment environment. The table
// store writes one row per finding, so the pool stays small.
func OptionsFor(cfg *config.Config) Options {
	level := logger.Silent
	if cfg.Environment != "production" {
		level = logger.Info
	}
	return Options{
		LogLevel:      level,
		SlowThreshold: 200 * time.Millisecond,
		MaxIdleConns:  2,
		MaxOpenConns:  10,
		ConnLifetime:  time.Hour,
		ConnIdleTime:  5 * time.Minute,
	}
}

// Open connects to DATABASE_URL and applies the table store schema
func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := Connect(ctx, postgres.Open(cfg.DatabaseURL), OptionsFor(cfg))
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		Close(db)
		return nil, err
	}
	return db, nil
}

// Connect opens dialector and verifies the connection within ctx
func Connect(ctx context.Context, dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 pkgLogger.NewGormLogger(opts.LogLevel, opts.SlowThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnLifetime)
	sqlDB.SetConnMaxIdleTime(opts.ConnIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
