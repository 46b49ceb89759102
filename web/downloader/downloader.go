package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrNotFound is returned when remote file does not exist.
var ErrNotFound = errors.New("file not found")

//go:generate mockgen -destination=../../mock/downloader/downloader.go -package=mock_downloader github.com/attachsizer/web/downloader Service

// Service describes downloader interface.
type Service interface {
	Download(context.Context, string) ([]byte, error)
}

type impl struct {
	client *http.Client
}

// New returns downloader implementation. Nil client means http.DefaultClient.
func New(client *http.Client) Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &impl{client}
}

// Download downloads file and returns response body from it.
func (s *impl) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("error downloading %s: %w", url, ErrNotFound)
	default:
		return nil, fmt.Errorf("error downloading %s, status code is: %d", url, res.StatusCode)
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body for: %s failed with error: %w", url, err)
	}
	return b, nil
}

// Prober checks legacy thumbnails by downloading them from their URL.
type Prober struct {
	svc Service
}

// NewProber returns prober using svc for downloads.
func NewProber(svc Service) *Prober {
	return &Prober{svc}
}

// Probe downloads thumbnail and decodes its stored pixel dimensions, EXIF
// orientation is not applied. Missing files are reported as not found.
func (p *Prober) Probe(ctx context.Context, file, url string) (int, int, bool, error) {
	if url == "" {
		return 0, 0, false, nil
	}
	b, err := p.svc.Download(ctx, url)
	if errors.Is(err, ErrNotFound) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		return 0, 0, false, fmt.Errorf("error decoding %s into image: %w", url, err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy(), true, nil
}
