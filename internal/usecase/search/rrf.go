package search

import (
	"sort"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/store"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// ranking is one collection's rank-ordered KNN result with its mode weight.
type ranking struct {
	weight  float64
	results []store.Scored
}

// fuseWeightedRRF merges per-collection rankings via weighted Reciprocal
// Rank Fusion. score(d) = sum of w_i / (k + rank_i(d) + 1) over each ranking
// where d appears; a candidate absent from a ranking contributes nothing
// from it. A zero-weight ranking still enrolls its candidates, at score 0,
// so they stay eligible for the fused set. Equal scores order by ascending
// id so the fused ranking is deterministic.
func fuseWeightedRRF(rankings []ranking) []domain.FusedCandidate {
	scores := make(map[uint64]float64)
	for _, rk := range rankings {
		for rank, r := range rk.results {
			scores[r.ID] += rk.weight / float64(rrfK+rank+1)
		}
	}

	fused := make([]domain.FusedCandidate, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, domain.FusedCandidate{ID: id, Score: score})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ID < fused[j].ID
	})

	return fused
}
