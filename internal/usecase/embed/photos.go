package embed

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"
)

// maxPhotoBytes caps a single photo download.
const maxPhotoBytes = 20 << 20

// PhotoFetcher downloads and validates listing photos.
type PhotoFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPPhotoFetcher fetches photos over HTTP with a per-request timeout.
type HTTPPhotoFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPPhotoFetcher creates a photo fetcher.
func NewHTTPPhotoFetcher(timeout time.Duration) *HTTPPhotoFetcher {
	return &HTTPPhotoFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch downloads one photo and verifies it decodes as an image.
func (f *HTTPPhotoFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build photo request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch photo: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("read photo body: %w", err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	return data, nil
}
