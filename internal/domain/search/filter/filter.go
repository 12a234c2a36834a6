package filter

// Filters holds the hard constraints applied after rank fusion.
// A nil bound leaves that axis unconstrained.
type Filters struct {
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	MaxBedrooms  *int
	MinBathrooms *float64
	MaxBathrooms *float64
	// PropertyType requires an exact match when non-empty.
	PropertyType string
	// MustHaveAmenities lists amenity strings every candidate must carry.
	MustHaveAmenities []string
	// SaleLease is overridden by the searcher with the query property's own
	// sale/lease value; a caller-supplied value is never honored.
	SaleLease string
}

// IsEmpty reports whether no constraint is set.
func (f Filters) IsEmpty() bool {
	return f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinBedrooms == nil && f.MaxBedrooms == nil &&
		f.MinBathrooms == nil && f.MaxBathrooms == nil &&
		f.PropertyType == "" && len(f.MustHaveAmenities) == 0 &&
		f.SaleLease == ""
}

// Float returns a pointer to v, for building bounds inline.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building bounds inline.
func Int(v int) *int { return &v }
