package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/homegrid-io/comps/internal/store"
)

// Get returns the raw value stored under key, or store.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, store.ErrKeyNotFound
		}
		return nil, classify("get", err)
	}
	return data, nil
}

// Set stores a raw value under key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.do(ctx, s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Build()).Error(); err != nil {
		return classify("set", err)
	}
	return nil
}
