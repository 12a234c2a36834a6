package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/domain/search/filter"
)

// AmenityMatcher decides whether a candidate carries a required amenity.
type AmenityMatcher interface {
	Matches(p *domain.PropertyRecord, amenity string) bool
}

// DescriptionMatcher reproduces the legacy matching behavior: an amenity
// counts as present when it appears verbatim as a substring of the listing
// description.
type DescriptionMatcher struct{}

// Matches implements AmenityMatcher.
func (DescriptionMatcher) Matches(p *domain.PropertyRecord, amenity string) bool {
	return strings.Contains(p.Description, amenity)
}

// FeatureListMatcher matches amenities against the structured feature lists
// instead of the free-text description, case-insensitively.
type FeatureListMatcher struct{}

// Matches implements AmenityMatcher.
func (FeatureListMatcher) Matches(p *domain.PropertyRecord, amenity string) bool {
	want := strings.ToLower(strings.TrimSpace(amenity))
	for _, list := range p.FeatureLists() {
		for _, entry := range list {
			if strings.Contains(strings.ToLower(entry), want) {
				return true
			}
		}
	}
	return false
}

// matchesFilters is the per-candidate predicate: short-circuits on the first
// failing check, in fixed order. An error means the candidate payload could
// not be evaluated; callers treat it as exclusion of that candidate only.
func matchesFilters(p *domain.PropertyRecord, f *filter.Filters, matcher AmenityMatcher) (bool, error) {
	if ok, err := matchesPrice(p, f); !ok || err != nil {
		return false, err
	}

	if p.Bedrooms == nil {
		if f.MinBedrooms != nil || f.MaxBedrooms != nil {
			return false, nil
		}
	} else {
		if f.MinBedrooms != nil && *p.Bedrooms < *f.MinBedrooms {
			return false, nil
		}
		if f.MaxBedrooms != nil && *p.Bedrooms > *f.MaxBedrooms {
			return false, nil
		}
	}

	if p.Bathrooms == nil {
		if f.MinBathrooms != nil || f.MaxBathrooms != nil {
			return false, nil
		}
	} else {
		if f.MinBathrooms != nil && *p.Bathrooms < *f.MinBathrooms {
			return false, nil
		}
		if f.MaxBathrooms != nil && *p.Bathrooms > *f.MaxBathrooms {
			return false, nil
		}
	}

	if f.PropertyType != "" && p.PropertyType != f.PropertyType {
		return false, nil
	}

	for _, amenity := range f.MustHaveAmenities {
		if !matcher.Matches(p, amenity) {
			return false, nil
		}
	}

	if f.SaleLease != "" && p.SaleLease != f.SaleLease {
		return false, nil
	}

	return true, nil
}

// matchesPrice checks the price bounds. A candidate with a price range
// passes on overlap with the filter interval; one with only a scalar list
// price passes when the scalar is inside the bounds; one with neither price
// field is excluded as soon as any price bound is set.
func matchesPrice(p *domain.PropertyRecord, f *filter.Filters) (bool, error) {
	if f.MinPrice == nil && f.MaxPrice == nil {
		return true, nil
	}

	if p.PriceRange != "" {
		lo, hi, err := parsePriceRange(p.PriceRange)
		if err != nil {
			return false, err
		}
		if f.MinPrice != nil && hi < *f.MinPrice {
			return false, nil
		}
		if f.MaxPrice != nil && lo > *f.MaxPrice {
			return false, nil
		}
		return true, nil
	}

	if p.ListPrice != nil {
		if f.MinPrice != nil && *p.ListPrice < *f.MinPrice {
			return false, nil
		}
		if f.MaxPrice != nil && *p.ListPrice > *f.MaxPrice {
			return false, nil
		}
		return true, nil
	}

	return false, nil
}

// parsePriceRange splits a "min-max" price range string.
func parsePriceRange(s string) (lo, hi float64, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed price_range %q", s)
	}
	lo, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed price_range %q: %w", s, err)
	}
	hi, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed price_range %q: %w", s, err)
	}
	return lo, hi, nil
}
