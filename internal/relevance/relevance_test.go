package relevance

import (
	"math"
	"testing"
)

func relevantSet(ids ...uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestPrecisionAtK(t *testing.T) {
	relevant := relevantSet(1, 2, 3)

	tests := []struct {
		name      string
		predicted []uint64
		k         int
		want      float64
	}{
		{"all hits", []uint64{1, 2}, 2, 1.0},
		{"half hits", []uint64{1, 9}, 2, 0.5},
		{"short prediction divides by k", []uint64{1}, 5, 0.2},
		{"beyond k ignored", []uint64{9, 9, 1, 2, 3}, 2, 0},
		{"zero k", []uint64{1}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrecisionAtK(relevant, tt.predicted, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	relevant := relevantSet(1, 2, 3, 4)

	if got := RecallAtK(relevant, []uint64{1, 2, 9}, 3); !almostEqual(got, 0.5) {
		t.Errorf("got %v, want 0.5", got)
	}
	if got := RecallAtK(nil, []uint64{1}, 3); got != 0 {
		t.Errorf("empty ground truth: got %v, want 0", got)
	}
}

func TestAveragePrecision(t *testing.T) {
	// Hits at ranks 1 and 3: AP = (1/1 + 2/3) / 2.
	relevant := relevantSet(1, 3)
	got := AveragePrecision(relevant, []uint64{1, 9, 3})
	want := (1.0 + 2.0/3.0) / 2.0
	if !almostEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := AveragePrecision(relevant, nil); got != 0 {
		t.Errorf("no predictions: got %v, want 0", got)
	}
	if got := AveragePrecision(nil, []uint64{1}); got != 0 {
		t.Errorf("empty ground truth: got %v, want 0", got)
	}
}

func TestEvaluateAll(t *testing.T) {
	groundTruth := map[uint64]map[uint64]struct{}{
		10: relevantSet(1, 2),
		20: relevantSet(3),
	}
	predictions := map[uint64][]uint64{
		10: {1, 2}, // perfect
		20: {9, 9}, // total miss
	}

	m := EvaluateAll(groundTruth, predictions, 2)
	if !almostEqual(m.Precision, 0.5) {
		t.Errorf("precision = %v, want 0.5", m.Precision)
	}
	if !almostEqual(m.Recall, 0.5) {
		t.Errorf("recall = %v, want 0.5", m.Recall)
	}
	if !almostEqual(m.AP, 0.5) {
		t.Errorf("ap = %v, want 0.5", m.AP)
	}
}

func TestEvaluateAll_MissingGroundTruthScoresZero(t *testing.T) {
	predictions := map[uint64][]uint64{
		10: {1, 2},
	}

	m := EvaluateAll(nil, predictions, 2)
	if m.Precision != 0 || m.Recall != 0 || m.AP != 0 {
		t.Errorf("metrics = %+v, want all zero", m)
	}
}

func TestEvaluateAll_NoPredictions(t *testing.T) {
	m := EvaluateAll(nil, nil, 5)
	if m != (Metrics{}) {
		t.Errorf("metrics = %+v, want zero value", m)
	}
}
