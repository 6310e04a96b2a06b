package storage

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Option is a functional option for configuring a key-value store.
type Option func(*config)

type config struct {
	root        string
	redisClient *redis.Client
	redisTTL    time.Duration
	keyPrefix   string
}

// WithRoot sets the directory the file driver writes under.
func WithRoot(dir string) Option {
	return func(c *config) {
		c.root = dir
	}
}

// WithRedisClient sets the Redis client for the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL for redis keys. Zero means no expiry.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.redisTTL = ttl
	}
}

// WithKeyPrefix namespaces all keys, e.g. per account, so two clients can
// share one redis database.
func WithKeyPrefix(prefix string) Option {
	return func(c *config) {
		c.keyPrefix = prefix
	}
}
