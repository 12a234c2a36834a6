package domain

// FusedCandidate is one candidate id after rank fusion, before payload
// resolution.
type FusedCandidate struct {
	ID    uint64
	Score float64
}

// SimilarProperty is one ranked, filtered search result.
type SimilarProperty struct {
	ID      uint64
	Score   float64
	Payload *PropertyRecord
}
