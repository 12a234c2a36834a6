// Package embed turns property records into normalized per-modality vectors.
package embed

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/encode"
)

// maxPhotos caps how many listing photos feed the visual vector.
const maxPhotos = 5

// Vectors holds one normalized vector per modality.
type Vectors struct {
	Location []float32
	Features []float32
	Visual   []float32
}

// Generator produces the per-modality vectors of a property.
type Generator struct {
	text    encode.TextEncoder
	image   encode.ImageEncoder
	fetcher PhotoFetcher
	workers int
	logger  *zap.Logger
}

// NewGenerator creates an embedding generator. workers bounds the photo
// download concurrency.
func NewGenerator(
	text encode.TextEncoder,
	image encode.ImageEncoder,
	fetcher PhotoFetcher,
	workers int,
	logger *zap.Logger,
) *Generator {
	if workers <= 0 {
		workers = maxPhotos
	}
	return &Generator{
		text:    text,
		image:   image,
		fetcher: fetcher,
		workers: workers,
		logger:  logger,
	}
}

// Generate builds all modality vectors for the record. Any failure leaves the
// record unindexable: partial vector sets are never returned.
func (g *Generator) Generate(ctx context.Context, p *domain.PropertyRecord) (Vectors, error) {
	location, err := g.encodeText(ctx, LocationText(p), "location")
	if err != nil {
		return Vectors{}, err
	}
	features, err := g.encodeText(ctx, FeaturesText(p), "features")
	if err != nil {
		return Vectors{}, err
	}
	visual, err := g.VisualVector(ctx, p.Photos)
	if err != nil {
		return Vectors{}, err
	}
	return Vectors{Location: location, Features: features, Visual: visual}, nil
}

func (g *Generator) encodeText(ctx context.Context, text, signal string) ([]float32, error) {
	vec, err := g.text.EncodeText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("encode %s text: %w", signal, err)
	}
	if len(vec) != domain.TextDim {
		return nil, fmt.Errorf("%w: %s vector has dim %d, want %d",
			domain.ErrDimensionMismatch, signal, len(vec), domain.TextDim)
	}
	return domain.L2Normalize(vec), nil
}

// VisualVector aggregates up to maxPhotos per-photo vectors into one
// normalized mean vector. Individual photo failures are skipped; zero usable
// photos means the property has no visual signal at all.
func (g *Generator) VisualVector(ctx context.Context, photoURLs []string) ([]float32, error) {
	urls := photoURLs
	if len(urls) > maxPhotos {
		urls = urls[:maxPhotos]
	}

	perPhoto := make([][]float32, len(urls))

	var wg sync.WaitGroup
	sem := make(chan struct{}, g.workers)
	for i, url := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, url string) {
			defer func() { <-sem; wg.Done() }()
			vec, err := g.encodePhoto(ctx, url)
			if err != nil {
				g.logger.Warn("Skipping photo",
					zap.String("url", url),
					zap.Error(err))
				return
			}
			perPhoto[i] = vec
		}(i, url)
	}
	wg.Wait()

	usable := perPhoto[:0]
	for _, vec := range perPhoto {
		if vec != nil {
			usable = append(usable, vec)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("%w: no usable photos out of %d",
			domain.ErrEmbeddingUnavailable, len(urls))
	}

	return domain.L2Normalize(domain.Mean(usable)), nil
}

func (g *Generator) encodePhoto(ctx context.Context, url string) ([]float32, error) {
	data, err := g.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	vec, err := g.image.EncodeImage(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(vec) != domain.VisualDim {
		return nil, fmt.Errorf("%w: photo vector has dim %d, want %d",
			domain.ErrDimensionMismatch, len(vec), domain.VisualDim)
	}
	return domain.L2Normalize(vec), nil
}
