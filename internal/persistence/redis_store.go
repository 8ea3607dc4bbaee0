package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Storage backed by Redis. Every key is stored as a plain
// string value under <prefix><key>.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Storage = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. prefix is prepended to every key;
// leave it empty when the adapter above already namespaces its keys.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
