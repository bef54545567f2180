package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage keeps evidence on the local filesystem. The API serves
// basePath under /uploads.
type LocalStorage struct {
	basePath string
	prefix   string
	now      func() time.Time
}

// NewLocalStorage creates basePath and returns a host whose URLs start
// with publicBaseURL/uploads/
func NewLocalStorage(basePath, publicBaseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath: basePath,
		prefix:   strings.TrimRight(publicBaseURL, "/") + "/uploads/",
		now:      time.Now,
	}, nil
}

// Upload writes media under evidence/YYYY/MM and returns its /uploads URL
func (s *LocalStorage) Upload(ctx context.Context, media Media) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey("evidence", media.Name, s.now())
	file := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(file, media.Data, 0644); err != nil {
		os.Remove(file)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return s.prefix + key, nil
}

// Resolve maps a URL returned by Upload back to its file. Report exports
// read local evidence from disk so the CLI works without a running API.
func (s *LocalStorage) Resolve(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.prefix)
	if !ok || key == "" {
		return "", false
	}
	key = path.Clean("/" + key)[1:]
	file := filepath.Join(s.basePath, filepath.FromSlash(key))
	if info, err := os.Stat(file); err != nil || info.IsDir() {
		return "", false
	}
	return file, true
}

// BasePath is the directory mounted at /uploads
func (s *LocalStorage) BasePath() string {
	return s.basePath
}
