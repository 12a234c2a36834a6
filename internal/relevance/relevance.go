// Package relevance computes ranking quality metrics for evaluation sweeps.
package relevance

// PrecisionAtK is the share of the top k predictions that are relevant.
func PrecisionAtK(relevant map[uint64]struct{}, predicted []uint64, k int) float64 {
	if k <= 0 {
		return 0
	}
	if len(predicted) > k {
		predicted = predicted[:k]
	}
	hits := 0
	for _, id := range predicted {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK is the share of relevant items found in the top k predictions.
func RecallAtK(relevant map[uint64]struct{}, predicted []uint64, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	if k >= 0 && len(predicted) > k {
		predicted = predicted[:k]
	}
	hits := 0
	for _, id := range predicted {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// AveragePrecision accumulates precision at each relevant hit down the
// predicted ranking, normalized by the relevant set size.
func AveragePrecision(relevant map[uint64]struct{}, predicted []uint64) float64 {
	if len(relevant) == 0 {
		return 0
	}
	sum := 0.0
	hits := 0
	for i, id := range predicted {
		if _, ok := relevant[id]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(len(relevant))
}

// Metrics bundles the per-query scores of one evaluation.
type Metrics struct {
	Precision float64
	Recall    float64
	AP        float64
}

// Evaluate scores one predicted ranking against its ground truth.
func Evaluate(relevant map[uint64]struct{}, predicted []uint64, k int) Metrics {
	return Metrics{
		Precision: PrecisionAtK(relevant, predicted, k),
		Recall:    RecallAtK(relevant, predicted, k),
		AP:        AveragePrecision(relevant, predicted),
	}
}

// EvaluateAll averages metrics across queries. Queries with no ground truth
// score zero, matching a strict evaluation posture.
func EvaluateAll(groundTruth map[uint64]map[uint64]struct{}, predictions map[uint64][]uint64, k int) Metrics {
	if len(predictions) == 0 {
		return Metrics{}
	}
	var total Metrics
	for id, predicted := range predictions {
		m := Evaluate(groundTruth[id], predicted, k)
		total.Precision += m.Precision
		total.Recall += m.Recall
		total.AP += m.AP
	}
	n := float64(len(predictions))
	return Metrics{
		Precision: total.Precision / n,
		Recall:    total.Recall / n,
		AP:        total.AP / n,
	}
}
