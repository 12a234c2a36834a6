// Package redis implements the vector collection store on Redis 8+ via
// rueidis, with FT.SEARCH KNN queries over HNSW-indexed hashes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/homegrid-io/comps/internal/domain"
	"github.com/homegrid-io/comps/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// keyPrefix namespaces every key this driver writes.
const keyPrefix = "comps:"

// Hash field names for stored points.
const (
	fieldVector  = "__vector"
	fieldPayload = "payload"
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements store.Store via rueidis.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.b().Ping().Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return classify("ping", err)
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
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// CreateCollection writes the collection metadata hash and creates the HNSW
// vector index. On FT.CREATE failure the metadata write is rolled back.
func (s *Store) CreateCollection(ctx context.Context, name string, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("redis: collection %s: dimension must be positive", name)
	}

	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrCollectionExists
	}

	meta := metaKey(name)
	cmd := s.b().Hset().Key(meta).FieldValue().FieldValue("dim", strconv.Itoa(dim)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return classify(fmt.Sprintf("hset %s", meta), err)
	}

	args := []string{
		indexName(name), "ON", "HASH",
		"PREFIX", "1", pointPrefix(name),
		"SCHEMA", fieldVector, "VECTOR", "HNSW", "6",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dim),
		"DISTANCE_METRIC", "COSINE",
	}
	create := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, create).Error(); err != nil {
		cleanup := s.b().Del().Key(meta).Build()
		cleanupErr := s.do(ctx, cleanup).Error()
		if isRedisErr(err, "index already exists") {
			return errors.Join(store.ErrCollectionExists, cleanupErr)
		}
		return errors.Join(classify("ft.create "+indexName(name), err), cleanupErr)
	}

	return nil
}

// CollectionExists probes the index via FT.INFO; "unknown index name" means absent.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(indexName(name)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, classify("ft.info "+indexName(name), err)
	}
	return true, nil
}

// Upsert writes vector blob and payload JSON into one hash; HSET replaces
// both fields together.
func (s *Store) Upsert(ctx context.Context, collection string, p store.Point) error {
	dim, err := s.collectionDim(ctx, collection)
	if err != nil {
		return err
	}
	if len(p.Vector) != dim {
		return fmt.Errorf(
			"redis: collection %s expects dim %d, got %d: %w",
			collection, dim, len(p.Vector), domain.ErrDimensionMismatch,
		)
	}

	data, err := json.Marshal(p.Payload)
	if err != nil {
		return fmt.Errorf("redis: marshal payload for point %d: %w", p.ID, err)
	}

	key := pointKey(collection, p.ID)
	cmd := s.b().Hset().Key(key).FieldValue().
		FieldValue(fieldVector, vectorToBlob(p.Vector)).
		FieldValue(fieldPayload, string(data)).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return classify("hset "+key, err)
	}
	return nil
}

// Retrieve fetches points by id in a single DoMulti round-trip. Absent ids
// yield empty hashes and are skipped.
func (s *Store) Retrieve(
	ctx context.Context, collection string, ids []uint64, withVector, withPayload bool,
) ([]store.Point, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		cmds[i] = s.b().Hgetall().Key(pointKey(collection, id)).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	points := make([]store.Point, 0, len(ids))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, classify(fmt.Sprintf("hgetall %s", pointKey(collection, ids[i])), err)
		}
		if len(m) == 0 {
			continue
		}
		point, err := pointFromHash(ids[i], m, withVector, withPayload)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

func (s *Store) collectionDim(ctx context.Context, name string) (int, error) {
	cmd := s.b().Hget().Key(metaKey(name)).Field("dim").Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, fmt.Errorf("redis: %w: %s", store.ErrCollectionNotFound, name)
		}
		return 0, classify("hget "+metaKey(name), err)
	}
	dim, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("redis: collection %s has invalid dim %q: %w", name, raw, err)
	}
	return dim, nil
}

func pointFromHash(id uint64, m map[string]string, withVector, withPayload bool) (store.Point, error) {
	point := store.Point{ID: id}
	if withVector {
		if blob, ok := m[fieldVector]; ok {
			point.Vector = blobToVector(blob)
		}
	}
	if withPayload {
		if raw, ok := m[fieldPayload]; ok && raw != "" {
			var rec domain.PropertyRecord
			if err := json.Unmarshal([]byte(raw), &rec); err != nil {
				return store.Point{}, fmt.Errorf("redis: decode payload for point %d: %w", id, err)
			}
			point.Payload = &rec
		}
	}
	return point, nil
}

// Key layout: comps:collection:{name}, comps:{name}:idx, comps:{name}:{id}

func metaKey(name string) string {
	return fmt.Sprintf("%scollection:%s", keyPrefix, name)
}

func indexName(name string) string {
	return fmt.Sprintf("%s%s:idx", keyPrefix, name)
}

func pointPrefix(name string) string {
	return fmt.Sprintf("%s%s:", keyPrefix, name)
}

func pointKey(name string, id uint64) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, name, id)
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// classify separates transport failures (retryable) from server errors.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("redis: %s: %w", op, err)
	}
	if _, isServer := rueidis.IsRedisErr(err); isServer {
		return fmt.Errorf("redis: %s: %w", op, err)
	}
	return fmt.Errorf("redis: %s: %w: %w", op, domain.ErrTransientIO, err)
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
