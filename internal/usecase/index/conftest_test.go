package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/retry"
	"github.com/homegrid-io/comps/internal/store"
	"github.com/homegrid-io/comps/internal/usecase/embed"
)

// mockVectorStore lets each test inject collection and upsert behavior and
// records every write.
type mockVectorStore struct {
	mu sync.Mutex

	createFn func(ctx context.Context, name string, dim int) error
	existsFn func(ctx context.Context, name string) (bool, error)
	upsertFn func(ctx context.Context, collection string, p store.Point) error

	created []string
	upserts []string
}

func (m *mockVectorStore) CreateCollection(ctx context.Context, name string, dim int) error {
	m.mu.Lock()
	m.created = append(m.created, name)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, name, dim)
	}
	return nil
}

func (m *mockVectorStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, name)
	}
	return false, nil
}

func (m *mockVectorStore) Upsert(ctx context.Context, collection string, p store.Point) error {
	m.mu.Lock()
	m.upserts = append(m.upserts, collection)
	m.mu.Unlock()
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, p)
	}
	return nil
}

func (m *mockVectorStore) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserts)
}

type mockVectorizer struct {
	generateFn func(ctx context.Context, p *domain.PropertyRecord) (embed.Vectors, error)
}

func (m *mockVectorizer) Generate(ctx context.Context, p *domain.PropertyRecord) (embed.Vectors, error) {
	return m.generateFn(ctx, p)
}

func okVectorizer() *mockVectorizer {
	return &mockVectorizer{
		generateFn: func(_ context.Context, _ *domain.PropertyRecord) (embed.Vectors, error) {
			return embed.Vectors{
				Location: make([]float32, domain.TextDim),
				Features: make([]float32, domain.TextDim),
				Visual:   make([]float32, domain.VisualDim),
			}, nil
		},
	}
}

func validProperty(id uint64) *domain.PropertyRecord {
	return &domain.PropertyRecord{
		ID:                   id,
		FullAddress:          "1 Main St, Toronto, ON",
		AssociationAmenities: []string{},
		Photos:               []string{},
	}
}

func newTestIndexer(t *testing.T, s Store, v Vectorizer) *Service {
	t.Helper()
	return New(s, v, zap.NewNop()).WithRetry(retry.Opts{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
	})
}
