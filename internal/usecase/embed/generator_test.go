package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/domain"
)

type mockTextEncoder struct {
	encodeFn func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockTextEncoder) EncodeText(ctx context.Context, text string) ([]float32, error) {
	return m.encodeFn(ctx, text)
}

type mockImageEncoder struct {
	encodeFn func(ctx context.Context, img []byte) ([]float32, error)
}

func (m *mockImageEncoder) EncodeImage(ctx context.Context, img []byte) ([]float32, error) {
	return m.encodeFn(ctx, img)
}

type mockFetcher struct {
	fetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return m.fetchFn(ctx, url)
}

func constantTextVector(dim int) *mockTextEncoder {
	return &mockTextEncoder{
		encodeFn: func(_ context.Context, _ string) ([]float32, error) {
			vec := make([]float32, dim)
			for i := range vec {
				vec[i] = 1
			}
			return vec, nil
		},
	}
}

func newTestGenerator(text *mockTextEncoder, image *mockImageEncoder, fetcher *mockFetcher) *Generator {
	return NewGenerator(text, image, fetcher, 2, zap.NewNop())
}

func TestGenerate_AllModalities(t *testing.T) {
	image := &mockImageEncoder{
		encodeFn: func(_ context.Context, _ []byte) ([]float32, error) {
			vec := make([]float32, domain.VisualDim)
			vec[0] = 1
			return vec, nil
		},
	}
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte("img"), nil
		},
	}
	g := newTestGenerator(constantTextVector(domain.TextDim), image, fetcher)

	vecs, err := g.Generate(context.Background(), &domain.PropertyRecord{
		Photos: []string{"http://x/1.jpg"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for name, vec := range map[string][]float32{
		"location": vecs.Location,
		"features": vecs.Features,
		"visual":   vecs.Visual,
	} {
		if !domain.IsUnit(vec) {
			t.Errorf("%s vector is not unit norm", name)
		}
	}
	if len(vecs.Location) != domain.TextDim || len(vecs.Visual) != domain.VisualDim {
		t.Errorf("unexpected dims: location=%d visual=%d", len(vecs.Location), len(vecs.Visual))
	}
}

func TestGenerate_TextDimensionMismatch(t *testing.T) {
	g := newTestGenerator(constantTextVector(10), nil, nil)

	_, err := g.Generate(context.Background(), &domain.PropertyRecord{})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("want ErrDimensionMismatch, got %v", err)
	}
}

func TestVisualVector_MeanOfPhotos(t *testing.T) {
	// Two orthogonal unit vectors: the mean re-normalizes to 1/sqrt(2) on
	// both axes.
	calls := 0
	image := &mockImageEncoder{
		encodeFn: func(_ context.Context, img []byte) ([]float32, error) {
			vec := make([]float32, domain.VisualDim)
			if string(img) == "a" {
				vec[0] = 1
			} else {
				vec[1] = 1
			}
			return vec, nil
		},
	}
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, url string) ([]byte, error) {
			calls++
			if url == "http://x/a.jpg" {
				return []byte("a"), nil
			}
			return []byte("b"), nil
		},
	}
	g := NewGenerator(nil, image, fetcher, 1, zap.NewNop())

	vec, err := g.VisualVector(context.Background(), []string{"http://x/a.jpg", "http://x/b.jpg"})
	if err != nil {
		t.Fatalf("VisualVector: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetched %d photos, want 2", calls)
	}

	want := float32(1 / math.Sqrt2)
	for _, i := range []int{0, 1} {
		if math.Abs(float64(vec[i]-want)) > 1e-6 {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want)
		}
	}
	if !domain.IsUnit(vec) {
		t.Error("visual vector is not unit norm")
	}
}

func TestVisualVector_CapsAtFivePhotos(t *testing.T) {
	var fetched int
	image := &mockImageEncoder{
		encodeFn: func(_ context.Context, _ []byte) ([]float32, error) {
			vec := make([]float32, domain.VisualDim)
			vec[0] = 1
			return vec, nil
		},
	}
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, _ string) ([]byte, error) {
			fetched++
			return []byte("img"), nil
		},
	}
	g := NewGenerator(nil, image, fetcher, 1, zap.NewNop())

	urls := make([]string, 8)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://x/%d.jpg", i)
	}
	if _, err := g.VisualVector(context.Background(), urls); err != nil {
		t.Fatalf("VisualVector: %v", err)
	}
	if fetched != maxPhotos {
		t.Errorf("fetched %d photos, want %d", fetched, maxPhotos)
	}
}

func TestVisualVector_SkipsFailedPhotos(t *testing.T) {
	image := &mockImageEncoder{
		encodeFn: func(_ context.Context, _ []byte) ([]float32, error) {
			vec := make([]float32, domain.VisualDim)
			vec[0] = 1
			return vec, nil
		},
	}
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, url string) ([]byte, error) {
			if url == "http://x/bad.jpg" {
				return nil, errors.New("fetch failed")
			}
			return []byte("img"), nil
		},
	}
	g := NewGenerator(nil, image, fetcher, 2, zap.NewNop())

	vec, err := g.VisualVector(context.Background(), []string{"http://x/bad.jpg", "http://x/ok.jpg"})
	if err != nil {
		t.Fatalf("VisualVector: %v", err)
	}
	if !domain.IsUnit(vec) {
		t.Error("visual vector is not unit norm")
	}
}

func TestVisualVector_NoUsablePhotos(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, _ string) ([]byte, error) {
			return nil, errors.New("fetch failed")
		},
	}
	g := NewGenerator(nil, nil, fetcher, 2, zap.NewNop())

	_, err := g.VisualVector(context.Background(), []string{"http://x/1.jpg"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("want ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestVisualVector_WrongPhotoDimension(t *testing.T) {
	image := &mockImageEncoder{
		encodeFn: func(_ context.Context, _ []byte) ([]float32, error) {
			return []float32{1, 2, 3}, nil
		},
	}
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte("img"), nil
		},
	}
	g := NewGenerator(nil, image, fetcher, 1, zap.NewNop())

	// The wrong-dimension photo is skipped like any other failure; with no
	// other photos the visual signal is unavailable.
	_, err := g.VisualVector(context.Background(), []string{"http://x/1.jpg"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("want ErrEmbeddingUnavailable, got %v", err)
	}
}
