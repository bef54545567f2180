package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/auditnote/auditnote-api/pkg/logger"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.SetupWriter("development", &buf, "debug")
	t.Cleanup(func() { logger.Setup("development") })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/reports/export", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Empty(t, buf.String())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/reports/export?company=Acme&token=secret", nil))
	line := buf.String()
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, "status=404")
	assert.Contains(t, line, "token=REDACTED")
	assert.NotContains(t, line, "secret")
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, levelFor(http.StatusCreated))
	assert.Equal(t, slog.LevelWarn, levelFor(http.StatusUnauthorized))
	assert.Equal(t, slog.LevelError, levelFor(http.StatusBadGateway))
}
