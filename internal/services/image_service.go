package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"path/filepath"
	"strings"

	"github.com/jdeng/goheif"

	"github.com/auditnote/auditnote-api/internal/storage"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

var decodeHEIC = goheif.Decode

var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".bmp":  "image/bmp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// ImageService prepares evidence photos and hands them to the image host
type ImageService struct {
	host    storage.ImageHost
	maxSize int64
}

func NewImageService(host storage.ImageHost) *ImageService {
	return &ImageService{host: host, maxSize: storage.MaxFileSize()}
}

// Prepare reads an upload into memory. HEIC/HEIF photos are decoded and
// re-encoded as JPEG with a ".jpg" name; other accepted formats pass
// through unchanged.
func (s *ImageService) Prepare(name string, r io.Reader) (storage.Media, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !storage.IsValidImage(name) {
		return storage.Media{}, fmt.Errorf("%w: %w: %s", ErrUploadFailure, ErrUnsupportedImage, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return storage.Media{}, fmt.Errorf("%w: read %s: %v", ErrUploadFailure, name, err)
	}
	if int64(len(data)) > s.maxSize {
		return storage.Media{}, fmt.Errorf("%w: %s vượt quá %d MB", ErrUploadFailure, name, s.maxSize>>20)
	}

	if ext != ".heic" && ext != ".heif" {
		return storage.Media{Name: name, MIMEType: imageMIMETypes[ext], Data: data}, nil
	}

	img, err := decodeHEIC(bytes.NewReader(data))
	if err != nil {
		return storage.Media{}, fmt.Errorf("%w: decode %s: %v", ErrUploadFailure, name, err)
	}
	converted, err := encodeJPEG(img)
	if err != nil {
		return storage.Media{}, fmt.Errorf("%w: encode %s: %v", ErrUploadFailure, name, err)
	}
	return storage.Media{
		Name:     strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg",
		MIMEType: "image/jpeg",
		Data:     converted,
	}, nil
}

// Upload prepares the photo and stores it, returning the public URL.
// Every failure wraps ErrUploadFailure.
func (s *ImageService) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	media, err := s.Prepare(name, r)
	if err != nil {
		return "", err
	}
	url, err := s.host.Upload(ctx, media)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}
	logger.Info("Evidence image uploaded", "name", media.Name, "bytes", len(media.Data))
	return url, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
