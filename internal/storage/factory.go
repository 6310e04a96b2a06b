package storage

// Driver selects a key-value store implementation.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFile   Driver = "file"
	DriverRedis  Driver = "redis"
)

// New creates a KV for the given driver.
// The file driver accepts WithRoot; the redis driver requires WithRedisClient.
func New(driver Driver, opts ...Option) (KV, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverMemory:
		return newMemoryKV(), nil

	case DriverFile:
		root := cfg.root
		if root == "" {
			root = DefaultStorageRoot()
		}
		return newFileKV(root), nil

	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		prefix := cfg.keyPrefix
		if prefix == "" {
			prefix = "aichat"
		}
		return &redisKV{
			client: cfg.redisClient,
			ttl:    cfg.redisTTL,
			prefix: prefix,
		}, nil

	default:
		return nil, ErrInvalidDriver
	}
}
