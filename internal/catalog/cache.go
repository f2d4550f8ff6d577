package catalog

import (
	"context"
	stderrors "errors"
	"time"

	"entity-mcp/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// Cache keeps a snapshot of the validated catalog JSON in Redis so that
// restarts skip the slower sources.
type Cache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, key string, ttl time.Duration) *Cache {
	return &Cache{client: client, key: key, ttl: ttl}
}

// Get returns the cached snapshot. A miss is reported as (nil, false, nil).
func (c *Cache) Get(ctx context.Context) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewCatalogCacheFailedError(err)
	}
	return raw, true, nil
}

func (c *Cache) Set(ctx context.Context, raw []byte) error {
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return errors.NewCatalogCacheFailedError(err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return errors.NewCatalogCacheFailedError(err)
	}
	return nil
}
