package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKV implements KV on Redis. Intended for kiosk-style deployments where
// several terminals share one device profile.
type redisKV struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func (s *redisKV) key(key string) string {
	return s.prefix + ":" + key
}

func (s *redisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if s.ttl > 0 {
		// Refresh TTL on read.
		_ = s.client.Expire(ctx, s.key(key), s.ttl).Err()
	}
	return val, nil
}

func (s *redisKV) Set(ctx context.Context, key string, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *redisKV) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *redisKV) Close() error {
	return s.client.Close()
}
