package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/sheets"
)

var fixedNow = time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)

func newTestRepos(t *testing.T) (*repository.Repositories, *sheets.MemoryStore) {
	t.Helper()
	store := sheets.NewMemoryStore()
	require.NoError(t, sheets.EnsureSchemas(context.Background(), store))
	return repository.NewRepositories(store), store
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		JWTExpirationHours:  12,
		PasswordHash:        HashSHA256,
		AdminBypassEnabled:  true,
		AdminBypassEmail:    "admin",
		AdminBypassPassword: "admin123",
		SeedDefaultAuditor:  true,
		PDFEngine:           config.PDFEngineGofpdf,
		ReportFontPath:      "testdata/missing.ttf",
		ImageFetchTimeout:   5 * time.Second,
		SessionIdleTTL:      time.Hour,
	}
}
