package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps generations and entries in Redis so every instance sees
// the same invalidations.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "hr:cache"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) genKey(tag string) string {
	return s.prefix + ":gen:{" + tag + "}"
}

func (s *RedisStore) entryKey(key string) string {
	return s.prefix + ":entry:" + key
}

func (s *RedisStore) Generation(ctx context.Context, tag string) (int64, error) {
	key := s.genKey(tag)
	if err := s.client.SetNX(ctx, key, 0, 0).Err(); err != nil {
		return 0, err
	}
	return s.client.Get(ctx, key).Int64()
}

func (s *RedisStore) Bump(ctx context.Context, tag string) (int64, error) {
	return s.client.Incr(ctx, s.genKey(tag)).Result()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.entryKey(key), value, ttl).Err()
}
