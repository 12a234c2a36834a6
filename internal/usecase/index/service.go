// Package index writes property vectors into the per-modality collections.
package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/metrics"
	"github.com/homegrid-io/comps/internal/retry"
	"github.com/homegrid-io/comps/internal/store"
)

// Service handles collection bootstrap and property indexing.
type Service struct {
	store      Store
	vectorizer Vectorizer
	retryOpts  retry.Opts
	logger     *zap.Logger
}

// New creates an indexing service.
func New(s Store, v Vectorizer, logger *zap.Logger) *Service {
	return &Service{
		store:      s,
		vectorizer: v,
		retryOpts:  retry.Default,
		logger:     logger,
	}
}

// WithRetry overrides the transient-failure retry policy.
func (s *Service) WithRetry(opts retry.Opts) *Service {
	s.retryOpts = opts
	return s
}

// EnsureCollections creates every modality collection that does not exist
// yet. Safe to call on every startup.
func (s *Service) EnsureCollections(ctx context.Context) error {
	for name, dim := range domain.CollectionDims() {
		exists, err := s.store.CollectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check collection %s: %w", name, err)
		}
		if exists {
			s.logger.Debug("Collection already exists", zap.String("collection", name))
			continue
		}

		err = s.store.CreateCollection(ctx, name, dim)
		if err != nil && !errors.Is(err, store.ErrCollectionExists) {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
		s.logger.Info("Created collection",
			zap.String("collection", name),
			zap.Int("dim", dim))
	}
	return nil
}

// IndexProperty validates, vectorizes and stores one property. All vectors
// are generated before the first write so a mid-pipeline failure never leaves
// a record half-vectorized; write failures after retries are reported and the
// property counts as failed.
func (s *Service) IndexProperty(ctx context.Context, p *domain.PropertyRecord) error {
	if err := p.Validate(); err != nil {
		metrics.IndexedPropertiesTotal.WithLabelValues("skipped").Inc()
		return err
	}

	vectors, err := s.vectorizer.Generate(ctx, p)
	if err != nil {
		metrics.IndexedPropertiesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("vectorize property %d: %w", p.ID, err)
	}

	points := []struct {
		collection string
		vector     []float32
	}{
		{domain.CollectionLocation, vectors.Location},
		{domain.CollectionFeatures, vectors.Features},
		{domain.CollectionVisual, vectors.Visual},
	}

	for _, pt := range points {
		err := retry.Do(ctx, s.retryOpts, func(ctx context.Context) error {
			return s.store.Upsert(ctx, pt.collection, store.Point{
				ID:      p.ID,
				Vector:  pt.vector,
				Payload: p,
			})
		})
		if err != nil {
			metrics.IndexedPropertiesTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("upsert property %d into %s: %w", p.ID, pt.collection, err)
		}
	}

	metrics.IndexedPropertiesTotal.WithLabelValues("indexed").Inc()
	s.logger.Info("Indexed property", zap.Uint64("id", p.ID))
	return nil
}
