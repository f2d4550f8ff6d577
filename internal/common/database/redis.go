package database

import (
	"fmt"
	"strings"
	"time"

	"entity-mcp/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// OpenRedis returns a client for the catalog snapshot cache. Address may be
// host:port or a redis:// URL; a URL's credentials and db win over cfg.
func OpenRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if strings.HasPrefix(cfg.Address, "redis://") || strings.HasPrefix(cfg.Address, "rediss://") {
		opts, err := redis.ParseURL(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		return redis.NewClient(withTimeouts(opts)), nil
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	return redis.NewClient(withTimeouts(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})), nil
}

// Snapshot reads and writes are single small values.
func withTimeouts(opts *redis.Options) *redis.Options {
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.PoolSize = 2
	return opts
}
