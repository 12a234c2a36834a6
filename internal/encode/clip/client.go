// Package clip provides an image encoder backed by a CLIP model served
// over a small HTTP API.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/metrics"
)

// Client implements encode.ImageEncoder against a CLIP embedding server.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a CLIP image encoder client.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type clipEmbedReq struct {
	Model string `json:"model"`
	Image string `json:"image"` // base64-encoded bytes
}

type clipEmbedResp struct {
	Embedding []float64 `json:"embedding"`
}

// EncodeImage embeds raw image bytes into the CLIP vector space.
func (c *Client) EncodeImage(ctx context.Context, img []byte) ([]float32, error) {
	body, _ := json.Marshal(clipEmbedReq{
		Model: c.model,
		Image: base64.StdEncoding.EncodeToString(img),
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/embed-image", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.EncodeRequestsTotal.WithLabelValues("image", c.model, "error").Inc()
		return nil, fmt.Errorf("clip embed: %w: %w", domain.ErrTransientIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.EncodeRequestsTotal.WithLabelValues("image", c.model, "error").Inc()
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("clip embed: status %d: %w", resp.StatusCode, domain.ErrTransientIO)
		}
		return nil, fmt.Errorf("clip embed: status %d: %w", resp.StatusCode, domain.ErrEmbeddingUnavailable)
	}

	var result clipEmbedResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.EncodeRequestsTotal.WithLabelValues("image", c.model, "error").Inc()
		return nil, fmt.Errorf("clip embed decode: %w", err)
	}

	if len(result.Embedding) == 0 {
		metrics.EncodeRequestsTotal.WithLabelValues("image", c.model, "error").Inc()
		return nil, fmt.Errorf("clip embed: empty embedding: %w", domain.ErrEmbeddingUnavailable)
	}

	metrics.EncodeRequestsTotal.WithLabelValues("image", c.model, "success").Inc()
	metrics.EncodeRequestDuration.WithLabelValues("image", c.model).Observe(time.Since(start).Seconds())

	out := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}
