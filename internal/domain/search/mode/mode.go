package mode

import (
	"fmt"
	"math"
)

// Mode names a fixed weighting profile over the three modality signals.
type Mode string

// Search mode constants.
const (
	Balanced              Mode = "balanced"
	VisualFocus           Mode = "visual_focus"
	FeaturesFocus         Mode = "features_focus"
	LocationFocus         Mode = "location_focus"
	DescriptionFocus      Mode = "description_focus"
	BalancedWithoutVisual Mode = "balanced_without_visual"
)

// All returns every declared mode.
func All() []Mode {
	return []Mode{
		Balanced, VisualFocus, FeaturesFocus,
		LocationFocus, DescriptionFocus, BalancedWithoutVisual,
	}
}

// IsValid checks if the mode is one of the declared values.
func (m Mode) IsValid() bool {
	for _, v := range All() {
		if m == v {
			return true
		}
	}
	return false
}

// Weights is one per-modality weighting profile. Weights sum to 1.
type Weights struct {
	Location float64
	Features float64
	Visual   float64
}

// DefaultWeights is the weight table covering every declared mode.
// description_focus has no stored description collection; its weight leans on
// the features signal, which already embeds the listing's attribute text.
func DefaultWeights() map[Mode]Weights {
	return map[Mode]Weights{
		Balanced:              {Location: 0.4, Features: 0.4, Visual: 0.2},
		VisualFocus:           {Location: 0.1, Features: 0.1, Visual: 0.8},
		FeaturesFocus:         {Location: 0.1, Features: 0.8, Visual: 0.1},
		LocationFocus:         {Location: 0.8, Features: 0.1, Visual: 0.1},
		DescriptionFocus:      {Location: 0.1, Features: 0.8, Visual: 0.1},
		BalancedWithoutVisual: {Location: 0.5, Features: 0.5, Visual: 0},
	}
}

const weightSumTolerance = 1e-9

// ValidateWeights requires the table to be total over the enumeration and
// every profile to sum to 1. Called at searcher construction so a missing or
// malformed profile fails at startup, not at query time.
func ValidateWeights(table map[Mode]Weights) error {
	for _, m := range All() {
		w, ok := table[m]
		if !ok {
			return fmt.Errorf("mode %q has no weight profile", m)
		}
		sum := w.Location + w.Features + w.Visual
		if math.Abs(sum-1) > weightSumTolerance {
			return fmt.Errorf("mode %q weights sum to %g, want 1", m, sum)
		}
		if w.Location < 0 || w.Features < 0 || w.Visual < 0 {
			return fmt.Errorf("mode %q has a negative weight", m)
		}
	}
	return nil
}
