package search

import (
	"context"

	"github.com/homegrid-io/comps/internal/store"
)

// Store defines the vector read contract for similarity search.
type Store interface {
	Retrieve(ctx context.Context, collection string, ids []uint64, withVector, withPayload bool) ([]store.Point, error)
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]store.Scored, error)
}
