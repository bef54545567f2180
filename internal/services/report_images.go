package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// evidenceMaxWidth caps the pixel width embedded in documents
	evidenceMaxWidth = 1200
	evidenceMaxBytes = 20 << 20
)

// LocalFiles resolves evidence URLs served by this process to files
type LocalFiles interface {
	Resolve(url string) (string, bool)
}

type evidenceFetcher struct {
	client *http.Client
	local  LocalFiles
}

func newEvidenceFetcher(timeout time.Duration) *evidenceFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &evidenceFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads, decodes and downscales one evidence photo
func (f *evidenceFetcher) Fetch(ctx context.Context, url string) (*EvidenceImage, error) {
	body, err := f.read(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := decodeEvidence(body)
	if err != nil {
		return nil, err
	}
	return toEvidenceImage(img)
}

func (f *evidenceFetcher) read(ctx context.Context, url string) ([]byte, error) {
	if f.local != nil {
		if file, ok := f.local.Resolve(url); ok {
			fh, err := os.Open(file)
			if err != nil {
				return nil, err
			}
			defer fh.Close()
			return io.ReadAll(io.LimitReader(fh, evidenceMaxBytes))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, evidenceMaxBytes))
}

// decodeEvidence handles every registered format plus HEIC
func decodeEvidence(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if heic, herr := decodeHEIC(bytes.NewReader(data)); herr == nil {
		return heic, nil
	}
	return nil, err
}

func toEvidenceImage(img image.Image) (*EvidenceImage, error) {
	if img.Bounds().Dx() > evidenceMaxWidth {
		img = imaging.Resize(img, evidenceMaxWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &EvidenceImage{JPEG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// fitBox converts a pixel size to document units and scales it down to
// fit within maxW x maxH, keeping the aspect ratio
func fitBox(w, h int, unitPerPx, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		side := math.Min(maxW, maxH)
		return side, side
	}
	width := float64(w) * unitPerPx
	height := float64(h) * unitPerPx
	scale := math.Min(1, math.Min(maxW/width, maxH/height))
	return width * scale, height * scale
}
