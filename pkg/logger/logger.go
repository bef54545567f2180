package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log is the global logger instance. It falls back to slog's default
// until Setup runs so packages can log from tests.
var Log = slog.Default()

// Setup initializes the global logger based on the environment
func Setup(env string) {
	SetupWriter(env, os.Stdout, os.Getenv("LOG_LEVEL"))
}

// SetupWriter initializes the global logger on w. The CLI logs to stderr
// so report bytes written to stdout stay clean.
func SetupWriter(env string, w io.Writer, level string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Info logs an info message
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

// With returns a child logger carrying args on every record
func With(args ...any) *slog.Logger {
	return Log.With(args...)
}
