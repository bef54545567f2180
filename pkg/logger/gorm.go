package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes statements of the postgres table backend through slog.
// Statements are debug records; slow ones are warnings.
type GormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
	log   func() *slog.Logger
}

// NewGormLogger binds to the global logger lazily so Setup may run later
func NewGormLogger(level gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		level: level,
		slow:  slowThreshold,
		log: func() *slog.Logger {
			return Log.With(slog.String("component", "table-store"))
		},
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Info, slog.LevelInfo, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Warn, slog.LevelWarn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Error, slog.LevelError, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, level slog.Level, msg string, data []interface{}) {
	if l.level < min {
		return
	}
	l.log().Log(ctx, level, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	// A missing header row means the table has not been created yet.
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		l.log().ErrorContext(ctx, "SQL error", append(attrs, slog.String("error", err.Error()))...)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		l.log().WarnContext(ctx, "Slow SQL", append(attrs, slog.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		l.log().DebugContext(ctx, "SQL", attrs...)
	}
}
