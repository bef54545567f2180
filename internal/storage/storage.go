// Package storage hosts evidence images and hands back public URLs.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/auditnote/auditnote-api/internal/config"
)

// Media is an uploadable file held in memory
type Media struct {
	Name     string
	MIMEType string
	Data     []byte
}

// ImageHost stores media and returns a publicly readable URL
type ImageHost interface {
	Upload(ctx context.Context, media Media) (string, error)
}

// New returns the image host selected by IMAGE_HOST
func New(ctx context.Context, cfg *config.Config) (ImageHost, error) {
	switch cfg.ImageHost {
	case config.ImageHostDrive:
		return NewDriveHost(ctx, cfg)
	case config.ImageHostS3:
		return NewS3Host(ctx, cfg)
	case config.ImageHostLocal:
		return NewLocalStorage(cfg.StoragePath, cfg.PublicBaseURL)
	}
	return nil, fmt.Errorf("unknown image host %q", cfg.ImageHost)
}

// ValidImageExtensions returns the accepted evidence extensions
func ValidImageExtensions() map[string]bool {
	return map[string]bool{
		".png":  true,
		".jpg":  true,
		".jpeg": true,
		".heic": true,
		".heif": true,
		".bmp":  true,
	}
}

// IsValidImage checks the file name's extension
func IsValidImage(name string) bool {
	return ValidImageExtensions()[strings.ToLower(filepath.Ext(name))]
}

// MaxFileSize returns the maximum allowed file size (10MB)
func MaxFileSize() int64 {
	return 10 * 1024 * 1024 // 10 MB
}

// objectKey builds "<prefix>/YYYY/MM/<id>-<name>"
func objectKey(prefix, name string, now time.Time) string {
	return path.Join(prefix, now.Format("2006/01"), generateID()+"-"+sanitizeName(name))
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// generateID creates a unique identifier for filenames
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
