// Package catalog iterates the indexed corpus for sweeps and evaluation.
package catalog

import (
	"context"
	"fmt"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/domain/search/filter"
	"github.com/homegrid-io/comps/internal/store"
)

// defaultPageSize is the scroll batch size.
const defaultPageSize = 100

// Store defines the scroll contract.
type Store interface {
	Scroll(ctx context.Context, collection, cursor string, limit int) ([]store.Point, string, error)
}

// Service walks whole collections page by page.
type Service struct {
	store    Store
	pageSize int
}

// New creates a catalog service.
func New(s Store) *Service {
	return &Service{store: s, pageSize: defaultPageSize}
}

// WithPageSize overrides the scroll batch size.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// AllProperties returns every payload in the canonical location collection.
func (s *Service) AllProperties(ctx context.Context) ([]*domain.PropertyRecord, error) {
	var records []*domain.PropertyRecord
	err := s.walk(ctx, func(pt store.Point) {
		if pt.Payload != nil {
			records = append(records, pt.Payload)
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AllIDs returns every indexed property id.
func (s *Service) AllIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.walk(ctx, func(pt store.Point) {
		ids = append(ids, pt.ID)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) walk(ctx context.Context, visit func(store.Point)) error {
	cursor := ""
	for {
		pts, next, err := s.store.Scroll(ctx, domain.CollectionLocation, cursor, s.pageSize)
		if err != nil {
			return fmt.Errorf("scroll %s: %w", domain.CollectionLocation, err)
		}
		for _, pt := range pts {
			visit(pt)
		}
		if next == "" {
			return nil
		}
		cursor = next
	}
}

// DynamicFilters derives per-property filter bounds from the listing's own
// attributes: price within ±5000 of the list price, bedrooms within ±2,
// both floored at zero. Missing attributes default to zero before widening.
func DynamicFilters(p *domain.PropertyRecord) *filter.Filters {
	var price float64
	if p.ListPrice != nil {
		price = *p.ListPrice
	}
	var bedrooms int
	if p.Bedrooms != nil {
		bedrooms = *p.Bedrooms
	}

	minPrice := price - 5000
	if minPrice < 0 {
		minPrice = 0
	}
	minBedrooms := bedrooms - 2
	if minBedrooms < 0 {
		minBedrooms = 0
	}

	return &filter.Filters{
		MinPrice:    filter.Float(minPrice),
		MaxPrice:    filter.Float(price + 5000),
		MinBedrooms: filter.Int(minBedrooms),
		MaxBedrooms: filter.Int(bedrooms + 2),
	}
}
