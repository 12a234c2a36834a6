package embed

import (
	"strings"

	"github.com/homegrid-io/comps/internal/domain"
)

// PreprocessText normalizes free text before vectorization: lowercase, trim.
func PreprocessText(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}

// LocationText assembles the location signal from the geographic fields.
func LocationText(p *domain.PropertyRecord) string {
	return PreprocessText(strings.Join([]string{
		p.City,
		p.CountyOrParish,
		p.StateOrProvince,
		p.Country,
	}, " "))
}

// FeaturesText assembles the features signal. The scalar attributes sit
// between the lot features and the accessibility features; reordering the
// parts changes every stored features vector.
func FeaturesText(p *domain.PropertyRecord) string {
	parts := make([]string, 0, 32)
	parts = append(parts, p.AssociationAmenities...)
	parts = append(parts, p.InteriorFeatures...)
	parts = append(parts, p.ExteriorFeatures...)
	parts = append(parts, p.Appliances...)
	parts = append(parts, p.LotFeatures...)
	parts = append(parts,
		"property_type: "+p.PropertyType,
		"architectural_style: "+p.ArchitecturalStyle,
		"lp_sale_lease: "+p.SaleLease,
	)
	parts = append(parts, p.AccessibilityFeatures...)
	parts = append(parts, p.BuildingFeatures...)
	parts = append(parts, p.FireplaceFeatures...)
	parts = append(parts, p.LaundryFeatures...)
	parts = append(parts, p.ParkingFeatures...)
	parts = append(parts, p.PoolFeatures...)
	parts = append(parts, p.SecurityFeatures...)
	parts = append(parts, p.WaterfrontFeatures...)
	return PreprocessText(strings.Join(parts, " "))
}

// DescriptionText normalizes the listing description signal.
func DescriptionText(p *domain.PropertyRecord) string {
	return PreprocessText(p.Description)
}
