// Package qdrant implements the vector collection store on Qdrant via gRPC.
package qdrant

import (
	"context"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Config holds connection parameters for a Qdrant store.
type Config struct {
	Addr   string
	APIKey string
}

// Store talks to Qdrant through the points and collections gRPC services.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	qdrant      pb.QdrantClient
}

// NewStore dials Qdrant at the given gRPC address.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("addr is required")
	}

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", cfg.Addr, err)
	}

	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		qdrant:      pb.NewQdrantClient(conn),
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() {
	_ = s.conn.Close()
}

// Ping checks connectivity via the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.qdrant.HealthCheck(ctx, &pb.HealthCheckRequest{}); err != nil {
		return classify("health check", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for qdrant: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// CreateCollection creates a cosine-metric collection of the given dimension.
func (s *Store) CreateCollection(ctx context.Context, name string, dim int) error {
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrCollectionExists
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dim),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return store.ErrCollectionExists
		}
		return classify(fmt.Sprintf("create collection %s", name), err)
	}
	return nil
}

// CollectionExists reports whether the named collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, classify("list collections", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == name {
			return true, nil
		}
	}
	return false, nil
}

// classify wraps gRPC errors so callers can tell transient failures from
// terminal ones with errors.Is.
func classify(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("qdrant: %s: %w: %w", op, domain.ErrTransientIO, err)
	case codes.NotFound:
		return fmt.Errorf("qdrant: %s: %w: %w", op, store.ErrCollectionNotFound, err)
	default:
		return fmt.Errorf("qdrant: %s: %w", op, err)
	}
}
