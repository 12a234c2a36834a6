package index

import (
	"context"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/store"
	"github.com/homegrid-io/comps/internal/usecase/embed"
)

// Store defines the vector storage contract for indexing.
type Store interface {
	CreateCollection(ctx context.Context, name string, dim int) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	Upsert(ctx context.Context, collection string, p store.Point) error
}

// Vectorizer produces the per-modality vectors of a property.
type Vectorizer interface {
	Generate(ctx context.Context, p *domain.PropertyRecord) (embed.Vectors, error)
}
