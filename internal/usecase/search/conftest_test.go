package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/store"
)

// mockStore lets each test inject retrieval and KNN behavior.
type mockStore struct {
	retrieveFn func(ctx context.Context, collection string, ids []uint64, withVector, withPayload bool) ([]store.Point, error)
	searchFn   func(ctx context.Context, collection string, vector []float32, limit int) ([]store.Scored, error)
}

func (m *mockStore) Retrieve(ctx context.Context, collection string, ids []uint64, withVector, withPayload bool) ([]store.Point, error) {
	return m.retrieveFn(ctx, collection, ids, withVector, withPayload)
}

func (m *mockStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]store.Scored, error) {
	return m.searchFn(ctx, collection, vector, limit)
}

func newTestService(t *testing.T, s Store) *Service {
	t.Helper()
	svc, err := New(s, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}
