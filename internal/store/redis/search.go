package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/homegrid-io/comps/internal/store"
)

// Search runs a KNN query via FT.SEARCH. FT returns cosine distance
// (lower = closer); scores are flipped to similarity so both drivers order
// and scale hits the same way.
func (s *Store) Search(
	ctx context.Context, collection string, vector []float32, limit int,
) ([]store.Scored, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("redis: search %s: vector is required", collection)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("redis: search %s: limit must be positive", collection)
	}

	query := fmt.Sprintf("*=>[KNN %d @%s $BLOB]", limit, fieldVector)
	args := []string{
		indexName(collection), query,
		"RETURN", "1", "__vector_score",
		"SORTBY", "__vector_score",
		"LIMIT", "0", strconv.Itoa(limit),
		"PARAMS", "2", "BLOB", vectorToBlob(vector),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, classify("ft.search "+indexName(collection), err)
	}

	return parseKNNResult(raw, pointPrefix(collection))
}

// Scroll pages through a collection via SCAN, then resolves payloads.
// The cursor is the SCAN cursor rendered as a string.
func (s *Store) Scroll(
	ctx context.Context, collection string, cursor string, limit int,
) ([]store.Point, string, error) {
	var scanCursor uint64
	if cursor != "" {
		parsed, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("redis: invalid scroll cursor %q: %w", cursor, err)
		}
		scanCursor = parsed
	}
	if limit <= 0 {
		limit = 100
	}

	prefix := pointPrefix(collection)
	cmd := s.b().Scan().Cursor(scanCursor).Match(prefix + "*").Count(int64(limit)).Build()
	entry, err := s.do(ctx, cmd).AsScanEntry()
	if err != nil {
		return nil, "", classify("scan "+prefix, err)
	}

	ids := make([]uint64, 0, len(entry.Elements))
	for _, key := range entry.Elements {
		id, err := strconv.ParseUint(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil {
			// Collection metadata and index keys do not match the point key
			// shape; skip anything that is not a point.
			continue
		}
		ids = append(ids, id)
	}

	points, err := s.Retrieve(ctx, collection, ids, false, true)
	if err != nil {
		return nil, "", err
	}

	var next string
	if entry.Cursor != 0 {
		next = strconv.FormatUint(entry.Cursor, 10)
	}
	return points, next, nil
}

// parseKNNResult walks the RESP2 reply: [total, key1, fields1, key2, fields2, ...]
func parseKNNResult(raw []rueidis.RedisMessage, prefix string) ([]store.Scored, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("redis: parse search total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]store.Scored, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		id, err := strconv.ParseUint(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil {
			continue
		}

		score := 0.0
		pairs := parseFieldPairs(fields)
		if distStr, ok := pairs["__vector_score"]; ok {
			if dist, err := strconv.ParseFloat(distStr, 64); err == nil {
				score = max(0, 1.0-dist) // cosine distance → similarity, clamped to [0,1]
			}
		}

		hits = append(hits, store.Scored{ID: id, Score: score})
	}
	return hits, nil
}

// parseFieldPairs converts a flat [k1, v1, k2, v2, ...] array into a map.
func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	out := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		k, err := fields[i].ToString()
		if err != nil {
			continue
		}
		v, err := fields[i+1].ToString()
		if err != nil {
			continue
		}
		out[k] = v
	}
	return out
}

// vectorToBlob serializes a []float32 into the little-endian binary string
// FT.SEARCH expects for FLOAT32 vector fields.
func vectorToBlob(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func blobToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
