package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// PropertyRecord is the typed schema of a listing payload. Field names mirror
// the warehouse columns. Fields the schema does not know about survive a
// decode/encode round trip in Extra.
type PropertyRecord struct {
	ID               uint64 `json:"id"`
	ProviderID       string `json:"lp_provider_id,omitempty"`
	ListingID        string `json:"lp_listing_id,omitempty"`
	SourceListingID  string `json:"listing_id,omitempty"`
	FullAddress      string `json:"lp_full_address"`
	FormattedAddress string `json:"lp_formatted_address,omitempty"`

	PropertyType       string `json:"lp_property_type,omitempty"`
	SaleLease          string `json:"lp_sale_lease,omitempty"`
	ArchitecturalStyle string `json:"architectural_style,omitempty"`

	ListPrice  *float64 `json:"list_price,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`
	Bedrooms   *int     `json:"bedrooms_total,omitempty"`
	Bathrooms  *float64 `json:"lp_calculated_bath,omitempty"`

	Description string   `json:"lp_listing_description,omitempty"`
	Photos      []string `json:"lp_photos"`

	AssociationAmenities  []string `json:"association_amenities"`
	InteriorFeatures      []string `json:"interior_features,omitempty"`
	ExteriorFeatures      []string `json:"exterior_features,omitempty"`
	Appliances            []string `json:"appliances,omitempty"`
	LotFeatures           []string `json:"lot_features,omitempty"`
	CommunityFeatures     []string `json:"community_features,omitempty"`
	AccessibilityFeatures []string `json:"accessibility_features,omitempty"`
	BuildingFeatures      []string `json:"building_features,omitempty"`
	FireplaceFeatures     []string `json:"fireplace_features,omitempty"`
	LaundryFeatures       []string `json:"laundry_features,omitempty"`
	ParkingFeatures       []string `json:"parking_features,omitempty"`
	PoolFeatures          []string `json:"pool_features,omitempty"`
	SecurityFeatures      []string `json:"security_features,omitempty"`
	WaterfrontFeatures    []string `json:"waterfront_features,omitempty"`

	City            string `json:"city,omitempty"`
	CountyOrParish  string `json:"county_or_parish,omitempty"`
	StateOrProvince string `json:"state_or_province,omitempty"`
	Country         string `json:"country,omitempty"`

	// Extra holds payload fields outside the known schema.
	Extra map[string]any `json:"-"`
}

// Validate checks the fields indexing requires.
// A record failing validation must not be written to any collection.
func (p *PropertyRecord) Validate() error {
	if p.ID == 0 {
		return fmt.Errorf("%w: missing required field id", ErrValidation)
	}
	if p.FullAddress == "" {
		return fmt.Errorf("%w: missing required field lp_full_address", ErrValidation)
	}
	if p.AssociationAmenities == nil {
		return fmt.Errorf("%w: missing required field association_amenities", ErrValidation)
	}
	if p.Photos == nil {
		return fmt.Errorf("%w: missing required field lp_photos", ErrValidation)
	}
	return nil
}

// FeatureLists returns every structured feature list of the record, in the
// order the features text is assembled.
func (p *PropertyRecord) FeatureLists() [][]string {
	return [][]string{
		p.AssociationAmenities,
		p.InteriorFeatures,
		p.ExteriorFeatures,
		p.Appliances,
		p.LotFeatures,
		p.AccessibilityFeatures,
		p.BuildingFeatures,
		p.FireplaceFeatures,
		p.LaundryFeatures,
		p.ParkingFeatures,
		p.PoolFeatures,
		p.SecurityFeatures,
		p.WaterfrontFeatures,
	}
}

// propertyRecordAlias avoids MarshalJSON/UnmarshalJSON recursion.
type propertyRecordAlias PropertyRecord

// knownPayloadKeys is the set of json tags the schema claims, built once by
// reflecting over the struct tags.
var knownPayloadKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeOf(PropertyRecord{})
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		for j := 0; j < len(tag); j++ {
			if tag[j] == ',' {
				tag = tag[:j]
				break
			}
		}
		keys[tag] = struct{}{}
	}
	return keys
}()

// UnmarshalJSON decodes known fields into the schema and collects the rest
// into Extra.
func (p *PropertyRecord) UnmarshalJSON(data []byte) error {
	var alias propertyRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range knownPayloadKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		alias.Extra = make(map[string]any, len(raw))
		for key, msg := range raw {
			var v any
			if err := json.Unmarshal(msg, &v); err != nil {
				return fmt.Errorf("decode extra field %q: %w", key, err)
			}
			alias.Extra[key] = v
		}
	}

	*p = PropertyRecord(alias)
	return nil
}

// MarshalJSON encodes the schema fields and merges Extra back in.
// Known keys always win over Extra entries of the same name.
func (p PropertyRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(propertyRecordAlias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, v := range p.Extra {
		if _, known := merged[key]; known {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode extra field %q: %w", key, err)
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}
