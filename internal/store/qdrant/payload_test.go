package qdrant

import (
	"testing"

	pb "github.com/qdrant/go-client/qdrant"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/domain/search/filter"
)

func TestPayloadRoundTrip(t *testing.T) {
	rec := &domain.PropertyRecord{
		ID:                   42,
		FullAddress:          "1 Main St, Toronto, ON",
		PropertyType:         "Condo",
		SaleLease:            "Sale",
		ListPrice:            filter.Float(512500.5),
		Bedrooms:             filter.Int(3),
		Photos:               []string{"http://x/a.jpg"},
		AssociationAmenities: []string{"Pool", "Gym"},
		Extra: map[string]any{
			"mls_board": "TRREB",
		},
	}

	payload, err := payloadToValues(rec)
	if err != nil {
		t.Fatalf("payloadToValues: %v", err)
	}
	back, err := payloadFromValues(payload)
	if err != nil {
		t.Fatalf("payloadFromValues: %v", err)
	}

	if back.ID != rec.ID {
		t.Errorf("ID = %d, want %d", back.ID, rec.ID)
	}
	if back.FullAddress != rec.FullAddress || back.PropertyType != rec.PropertyType {
		t.Errorf("record = %+v", back)
	}
	if back.ListPrice == nil || *back.ListPrice != *rec.ListPrice {
		t.Errorf("ListPrice = %v", back.ListPrice)
	}
	if back.Bedrooms == nil || *back.Bedrooms != *rec.Bedrooms {
		t.Errorf("Bedrooms = %v", back.Bedrooms)
	}
	if len(back.AssociationAmenities) != 2 || back.AssociationAmenities[1] != "Gym" {
		t.Errorf("AssociationAmenities = %v", back.AssociationAmenities)
	}
	if back.Extra["mls_board"] != "TRREB" {
		t.Errorf("Extra = %v", back.Extra)
	}
}

func TestPayloadToValues_Nil(t *testing.T) {
	payload, err := payloadToValues(nil)
	if err != nil {
		t.Fatalf("payloadToValues: %v", err)
	}
	if payload != nil {
		t.Errorf("payload = %v, want nil", payload)
	}
}

func TestPayloadFromValues_Empty(t *testing.T) {
	rec, err := payloadFromValues(nil)
	if err != nil {
		t.Fatalf("payloadFromValues: %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %v, want nil", rec)
	}
}

func TestAnyToValue_IntegralFloatsStayIntegers(t *testing.T) {
	v, err := anyToValue(float64(42))
	if err != nil {
		t.Fatalf("anyToValue: %v", err)
	}
	if _, ok := v.GetKind().(*pb.Value_IntegerValue); !ok {
		t.Errorf("kind = %T, want IntegerValue", v.GetKind())
	}

	v, err = anyToValue(42.5)
	if err != nil {
		t.Fatalf("anyToValue: %v", err)
	}
	if _, ok := v.GetKind().(*pb.Value_DoubleValue); !ok {
		t.Errorf("kind = %T, want DoubleValue", v.GetKind())
	}
}
