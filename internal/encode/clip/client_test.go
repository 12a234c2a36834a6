package clip

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/homegrid-io/comps/internal/domain"
)

func TestEncodeImage(t *testing.T) {
	img := []byte{0xFF, 0xD8, 0xFF}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed-image" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req clipEmbedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "clip-ViT-B-32" {
			t.Errorf("model = %q", req.Model)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || len(decoded) != len(img) {
			t.Errorf("image payload not base64 round-trippable: %v", err)
		}
		json.NewEncoder(w).Encode(clipEmbedResp{Embedding: []float64{0.5, -0.25}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "clip-ViT-B-32", time.Second)
	vec, err := c.EncodeImage(context.Background(), img)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 || vec[1] != -0.25 {
		t.Errorf("vec = %v", vec)
	}
}

func TestEncodeImage_StatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"rate limited is transient", http.StatusTooManyRequests, domain.ErrTransientIO},
		{"server error is transient", http.StatusBadGateway, domain.ErrTransientIO},
		{"bad request is permanent", http.StatusBadRequest, domain.ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "clip", time.Second)
			_, err := c.EncodeImage(context.Background(), []byte("img"))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEncodeImage_EmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(clipEmbedResp{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "clip", time.Second)
	_, err := c.EncodeImage(context.Background(), []byte("img"))
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("want ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestEncodeImage_ConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse all connections

	c := NewClient(srv.URL, "clip", time.Second)
	_, err := c.EncodeImage(context.Background(), []byte("img"))
	if !errors.Is(err, domain.ErrTransientIO) {
		t.Errorf("want ErrTransientIO, got %v", err)
	}
}
