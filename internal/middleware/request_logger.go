package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/pkg/logger"
)

// quietPrefixes are polled by load balancers or fetched once per report
// image; logging them drowns the audit trail.
var quietPrefixes = []string{"/api/v1/health", "/uploads/", "/swagger/"}

// RequestLogger logs one line per request with the auditor and audit
// session when the route is authenticated.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if isQuiet(path) {
			return
		}

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.Int("bytes", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" && route != path {
			attrs = append(attrs, slog.String("route", route))
		}
		if query != "" {
			attrs = append(attrs, slog.String("query", redactToken(query)))
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			attrs = append(attrs, slog.String("error", msg))
		}
		if id := GetIdentity(c); id.Email != "" {
			attrs = append(attrs, slog.String("auditor", id.Email))
		}
		if sid := GetSessionID(c); sid != "" {
			attrs = append(attrs, slog.String("session", sid))
		}

		logger.Log.LogAttrs(context.Background(), levelFor(status), "Incoming request", attrs...)
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// redactToken hides the ?token= value used by report download links
func redactToken(query string) string {
	parts := strings.Split(query, "&")
	for i, p := range parts {
		if strings.HasPrefix(p, "token=") {
			parts[i] = "token=REDACTED"
		}
	}
	return strings.Join(parts, "&")
}
