package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditnote/auditnote-api/internal/storage"
)

type fakeImageHost struct {
	uploaded []storage.Media
	err      error
}

func (f *fakeImageHost) Upload(ctx context.Context, media storage.Media) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, media)
	return "https://drive.google.com/uc?export=view&id=" + media.Name, nil
}

func stubHEICDecoder(t *testing.T) {
	t.Helper()
	orig := decodeHEIC
	decodeHEIC = func(r io.Reader) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})
		return img, nil
	}
	t.Cleanup(func() { decodeHEIC = orig })
}

func TestImageService_PreparePassThrough(t *testing.T) {
	svc := NewImageService(&fakeImageHost{})

	media, err := svc.Prepare("evidence.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "evidence.png", media.Name)
	assert.Equal(t, "image/png", media.MIMEType)
	assert.Equal(t, []byte("png-bytes"), media.Data)
}

func TestImageService_PrepareRejects(t *testing.T) {
	svc := NewImageService(&fakeImageHost{})

	_, err := svc.Prepare("notes.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.ErrorIs(t, err, ErrUploadFailure)

	svc.maxSize = 4
	_, err = svc.Prepare("big.jpg", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrUploadFailure)
}

func TestImageService_HEICBecomesJPEG(t *testing.T) {
	stubHEICDecoder(t)
	host := &fakeImageHost{}
	svc := NewImageService(host)

	url, err := svc.Upload(context.Background(), "photo.heic", strings.NewReader("heic-bytes"))
	require.NoError(t, err)

	require.Len(t, host.uploaded, 1)
	media := host.uploaded[0]
	assert.Equal(t, "photo.jpg", media.Name)
	assert.Equal(t, "image/jpeg", media.MIMEType)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	_, format, err := image.DecodeConfig(bytes.NewReader(media.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestImageService_DecodeFailure(t *testing.T) {
	orig := decodeHEIC
	decodeHEIC = func(io.Reader) (image.Image, error) { return nil, errors.New("bad heif") }
	defer func() { decodeHEIC = orig }()

	host := &fakeImageHost{}
	_, err := NewImageService(host).Upload(context.Background(), "photo.HEIF", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUploadFailure)
	assert.Empty(t, host.uploaded)
}

func TestImageService_HostFailure(t *testing.T) {
	svc := NewImageService(&fakeImageHost{err: errors.New("quota exceeded")})
	url, err := svc.Upload(context.Background(), "a.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUploadFailure)
	assert.Empty(t, url)
}
