package search

import (
	"testing"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/domain/search/filter"
)

func TestMatchesPrice(t *testing.T) {
	tests := []struct {
		name    string
		record  domain.PropertyRecord
		filters filter.Filters
		want    bool
		wantErr bool
	}{
		{
			name:   "no bounds pass regardless of price fields",
			record: domain.PropertyRecord{},
			want:   true,
		},
		{
			name:    "scalar inside bounds",
			record:  domain.PropertyRecord{ListPrice: filter.Float(120000)},
			filters: filter.Filters{MinPrice: filter.Float(100000), MaxPrice: filter.Float(150000)},
			want:    true,
		},
		{
			name:    "scalar above max",
			record:  domain.PropertyRecord{ListPrice: filter.Float(120000)},
			filters: filter.Filters{MaxPrice: filter.Float(110000)},
			want:    false,
		},
		{
			name:    "scalar below min",
			record:  domain.PropertyRecord{ListPrice: filter.Float(90000)},
			filters: filter.Filters{MinPrice: filter.Float(100000)},
			want:    false,
		},
		{
			name:    "range overlapping bounds",
			record:  domain.PropertyRecord{PriceRange: "100000-150000"},
			filters: filter.Filters{MinPrice: filter.Float(140000), MaxPrice: filter.Float(200000)},
			want:    true,
		},
		{
			name:    "range entirely below min",
			record:  domain.PropertyRecord{PriceRange: "100000-150000"},
			filters: filter.Filters{MinPrice: filter.Float(200000)},
			want:    false,
		},
		{
			name:    "range entirely above max",
			record:  domain.PropertyRecord{PriceRange: "300000-400000"},
			filters: filter.Filters{MaxPrice: filter.Float(250000)},
			want:    false,
		},
		{
			name:    "range preferred over scalar",
			record:  domain.PropertyRecord{PriceRange: "300000-400000", ListPrice: filter.Float(120000)},
			filters: filter.Filters{MaxPrice: filter.Float(250000)},
			want:    false,
		},
		{
			name:    "no price fields excluded once a bound is set",
			record:  domain.PropertyRecord{},
			filters: filter.Filters{MinPrice: filter.Float(1)},
			want:    false,
		},
		{
			name:    "malformed range is a candidate error",
			record:  domain.PropertyRecord{PriceRange: "cheap"},
			filters: filter.Filters{MinPrice: filter.Float(1)},
			want:    false,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchesPrice(&tt.record, &tt.filters)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesFilters(t *testing.T) {
	record := func() domain.PropertyRecord {
		return domain.PropertyRecord{
			ListPrice:    filter.Float(500000),
			Bedrooms:     filter.Int(3),
			Bathrooms:    filter.Float(2),
			PropertyType: "Condo",
			SaleLease:    "Sale",
			Description:  "Bright unit with Gym access and Concierge",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*domain.PropertyRecord)
		filters filter.Filters
		want    bool
	}{
		{
			name: "empty filters pass",
			want: true,
		},
		{
			name: "bedrooms below min",
			filters: filter.Filters{
				MinBedrooms: filter.Int(4),
			},
			want: false,
		},
		{
			name: "bedrooms inside bounds",
			filters: filter.Filters{
				MinBedrooms: filter.Int(2),
				MaxBedrooms: filter.Int(4),
			},
			want: true,
		},
		{
			name:   "missing bedrooms excluded only under a bound",
			mutate: func(p *domain.PropertyRecord) { p.Bedrooms = nil },
			filters: filter.Filters{
				MinBedrooms: filter.Int(1),
			},
			want: false,
		},
		{
			name:   "missing bedrooms pass without a bound",
			mutate: func(p *domain.PropertyRecord) { p.Bedrooms = nil },
			want:   true,
		},
		{
			name: "bathrooms above max",
			filters: filter.Filters{
				MaxBathrooms: filter.Float(1.5),
			},
			want: false,
		},
		{
			name:   "missing bathrooms excluded only under a bound",
			mutate: func(p *domain.PropertyRecord) { p.Bathrooms = nil },
			filters: filter.Filters{
				MinBathrooms: filter.Float(1),
			},
			want: false,
		},
		{
			name: "property type mismatch",
			filters: filter.Filters{
				PropertyType: "Detached",
			},
			want: false,
		},
		{
			name: "property type match",
			filters: filter.Filters{
				PropertyType: "Condo",
			},
			want: true,
		},
		{
			name: "amenity present in description",
			filters: filter.Filters{
				MustHaveAmenities: []string{"Gym"},
			},
			want: true,
		},
		{
			name: "one missing amenity fails the whole set",
			filters: filter.Filters{
				MustHaveAmenities: []string{"Gym", "Sauna"},
			},
			want: false,
		},
		{
			name: "sale lease mismatch",
			filters: filter.Filters{
				SaleLease: "Lease",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := record()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			got, err := matchesFilters(&p, &tt.filters, DescriptionMatcher{})
			if err != nil {
				t.Fatalf("matchesFilters: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescriptionMatcher_CaseSensitive(t *testing.T) {
	p := &domain.PropertyRecord{Description: "Heated Pool in the courtyard"}

	if !(DescriptionMatcher{}).Matches(p, "Heated Pool") {
		t.Error("verbatim substring should match")
	}
	if (DescriptionMatcher{}).Matches(p, "heated pool") {
		t.Error("description matching is verbatim, lowercase must not match")
	}
}

func TestFeatureListMatcher(t *testing.T) {
	p := &domain.PropertyRecord{
		InteriorFeatures: []string{"Hardwood Floors"},
		PoolFeatures:     []string{"Heated Pool"},
		Description:      "no amenities mentioned here",
	}

	m := FeatureListMatcher{}
	if !m.Matches(p, "heated pool") {
		t.Error("feature list matching is case-insensitive")
	}
	if !m.Matches(p, "Hardwood") {
		t.Error("partial entry match should pass")
	}
	if m.Matches(p, "Sauna") {
		t.Error("absent amenity must not match")
	}
}
