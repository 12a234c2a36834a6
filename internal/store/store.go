// Package store defines the vector collection store contract. Collections are
// single-modality similarity indexes holding one vector and one property
// payload per listing id. Two drivers implement the contract: qdrant (gRPC)
// and redis (rueidis, FT.SEARCH KNN).
package store

import (
	"context"
	"time"

	"github.com/homegrid-io/comps/internal/domain"
)

// Point is one stored entry: vector plus full property payload, keyed by the
// listing identifier. Vector and Payload may be nil depending on the
// retrieval selectors.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload *domain.PropertyRecord
}

// Scored is one nearest-neighbor hit, best-first ordering, higher score =
// more similar.
type Scored struct {
	ID    uint64
	Score float64
}

// Store is the collection store used by the indexer and searcher.
type Store interface {
	// CreateCollection creates a cosine-metric collection of the given fixed
	// dimension. Creating an existing collection returns ErrCollectionExists.
	CreateCollection(ctx context.Context, name string, dim int) error
	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)
	// Upsert replaces-or-inserts a point by id. Vector and payload are
	// replaced together; there is no partial overwrite.
	Upsert(ctx context.Context, collection string, p Point) error
	// Retrieve fetches points by id. Missing ids are silently absent from the
	// result, not an error.
	Retrieve(ctx context.Context, collection string, ids []uint64, withVector, withPayload bool) ([]Point, error)
	// Search runs a nearest-neighbor query, returning up to limit hits
	// ordered best-first.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]Scored, error)
	// Scroll pages through a collection with payloads. An empty cursor starts
	// the scan; an empty returned cursor ends it.
	Scroll(ctx context.Context, collection string, cursor string, limit int) ([]Point, string, error)
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}
