// Package search finds comparable properties via multi-collection KNN and
// weighted rank fusion.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/domain/search/filter"
	"github.com/homegrid-io/comps/internal/domain/search/mode"
	"github.com/homegrid-io/comps/internal/metrics"
)

const (
	defaultTopK = 10

	// knnFactor widens each per-collection KNN beyond topK so fusion has
	// candidates to disagree about; resolveFactor bounds how many fused
	// candidates get their payload resolved.
	knnFactor     = 2
	resolveFactor = 5
)

// Service runs similarity queries over the modality collections.
type Service struct {
	store     Store
	weights   map[mode.Mode]mode.Weights
	useVisual bool
	matcher   AmenityMatcher
	logger    *zap.Logger
}

// New creates a search service. The weight table must cover every search
// mode; a partial or inconsistent table is a construction error, not a
// per-query one.
func New(s Store, weights map[mode.Mode]mode.Weights, logger *zap.Logger) (*Service, error) {
	if weights == nil {
		weights = mode.DefaultWeights()
	}
	if err := mode.ValidateWeights(weights); err != nil {
		return nil, fmt.Errorf("search weights: %w", err)
	}
	return &Service{
		store:   s,
		weights: weights,
		matcher: DescriptionMatcher{},
		logger:  logger,
	}, nil
}

// WithVisualRetrieval toggles per-query retrieval of the visual collection.
// Off, the visual weight of the chosen mode simply never contributes.
func (s *Service) WithVisualRetrieval(on bool) *Service {
	s.useVisual = on
	return s
}

// WithAmenityMatcher swaps the amenity matching strategy.
func (s *Service) WithAmenityMatcher(m AmenityMatcher) *Service {
	s.matcher = m
	return s
}

// FindSimilar returns up to topK properties comparable to the anchor,
// best-first. The anchor never appears in its own results, and every result
// shares the anchor's sale/lease category whatever the caller's filters say.
func (s *Service) FindSimilar(
	ctx context.Context,
	propertyID uint64,
	m mode.Mode,
	filters *filter.Filters,
	topK int,
) ([]domain.SimilarProperty, error) {
	start := time.Now()

	results, err := s.findSimilar(ctx, propertyID, m, filters, topK)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(m), status).Inc()
	metrics.SearchRequestDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())

	return results, err
}

func (s *Service) findSimilar(
	ctx context.Context,
	propertyID uint64,
	m mode.Mode,
	filters *filter.Filters,
	topK int,
) ([]domain.SimilarProperty, error) {
	weights, ok := s.weights[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, m)
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	collections := []struct {
		name   string
		weight float64
	}{
		{domain.CollectionLocation, weights.Location},
		{domain.CollectionFeatures, weights.Features},
	}
	if s.useVisual {
		collections = append(collections, struct {
			name   string
			weight float64
		}{domain.CollectionVisual, weights.Visual})
	}

	var anchor *domain.PropertyRecord
	rankings := make([]ranking, 0, len(collections))
	for _, col := range collections {
		pts, err := s.store.Retrieve(ctx, col.name, []uint64{propertyID}, true, true)
		if err != nil {
			return nil, fmt.Errorf("retrieve anchor from %s: %w", col.name, err)
		}
		if len(pts) == 0 || len(pts[0].Vector) == 0 {
			return nil, fmt.Errorf("%w: property %d has no vector in %s",
				domain.ErrNotFound, propertyID, col.name)
		}
		if anchor == nil && pts[0].Payload != nil {
			anchor = pts[0].Payload
		}

		scored, err := s.store.Search(ctx, col.name, pts[0].Vector, knnFactor*topK)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", col.name, err)
		}
		rankings = append(rankings, ranking{weight: col.weight, results: scored})
	}

	fused := fuseWeightedRRF(rankings)
	metrics.SearchCandidatesFused.WithLabelValues(string(m)).Observe(float64(len(fused)))

	if limit := resolveFactor * topK; len(fused) > limit {
		fused = fused[:limit]
	}

	// The anchor is never its own neighbor.
	ids := make([]uint64, 0, len(fused))
	for _, c := range fused {
		if c.ID != propertyID {
			ids = append(ids, c.ID)
		}
	}

	payloads, err := s.resolvePayloads(ctx, ids)
	if err != nil {
		return nil, err
	}

	effective := effectiveFilters(filters, anchor)

	results := make([]domain.SimilarProperty, 0, topK)
	for _, c := range fused {
		if c.ID == propertyID {
			continue
		}
		payload, ok := payloads[c.ID]
		if !ok {
			continue
		}

		pass, err := matchesFilters(payload, effective, s.matcher)
		if err != nil {
			s.logger.Warn("Excluding candidate with unfilterable payload",
				zap.Uint64("id", c.ID),
				zap.Error(err))
			continue
		}
		if !pass {
			continue
		}

		results = append(results, domain.SimilarProperty{
			ID:      c.ID,
			Score:   c.Score,
			Payload: payload,
		})
		if len(results) == topK {
			break
		}
	}

	return results, nil
}

// resolvePayloads fetches candidate payloads from the location collection,
// which carries the canonical copy of every indexed record.
func (s *Service) resolvePayloads(ctx context.Context, ids []uint64) (map[uint64]*domain.PropertyRecord, error) {
	if len(ids) == 0 {
		return map[uint64]*domain.PropertyRecord{}, nil
	}

	pts, err := s.store.Retrieve(ctx, domain.CollectionLocation, ids, false, true)
	if err != nil {
		return nil, fmt.Errorf("resolve candidate payloads: %w", err)
	}

	payloads := make(map[uint64]*domain.PropertyRecord, len(pts))
	for _, pt := range pts {
		if pt.Payload != nil {
			payloads[pt.ID] = pt.Payload
		}
	}
	return payloads, nil
}

// effectiveFilters copies the caller's filters and pins the sale/lease
// constraint to the anchor's own category.
func effectiveFilters(filters *filter.Filters, anchor *domain.PropertyRecord) *filter.Filters {
	var eff filter.Filters
	if filters != nil {
		eff = *filters
	}
	if anchor != nil && anchor.SaleLease != "" {
		eff.SaleLease = anchor.SaleLease
	}
	return &eff
}
