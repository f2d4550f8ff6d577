package catalog

import (
	"context"
	"fmt"
	"time"

	"entity-mcp/internal/common/config"
	"entity-mcp/internal/common/database"
	"entity-mcp/internal/common/errors"
	httpclient "entity-mcp/internal/common/http"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/metrics"
)

// Loader reads the catalog from its source, going through the Redis snapshot
// when one is configured. Cache failures never fail a load.
type Loader struct {
	source Source
	cache  *Cache
	logger logger.Logger
}

// NewLoader builds a Loader. cache may be nil.
func NewLoader(source Source, cache *Cache, log logger.Logger) *Loader {
	return &Loader{
		source: source,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"catalogSource": source.Name()}),
	}
}

func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	start := time.Now()

	if cat, ok := l.loadCached(ctx); ok {
		l.record(metrics.OutcomeSuccess, cat)
		l.logger.Info("Catalog loaded from cache", map[string]interface{}{
			"partners": cat.Len(),
			"duration": time.Since(start).String(),
		})
		return cat, nil
	}

	raw, err := l.source.Load(ctx)
	if err != nil {
		l.record(metrics.OutcomeError, nil)
		return nil, errors.NewCatalogLoadFailedError(l.source.Name(), err)
	}

	cat, err := Parse(raw)
	if err != nil {
		l.record(metrics.OutcomeError, nil)
		return nil, err
	}

	l.storeCached(ctx, cat)
	l.record(metrics.OutcomeSuccess, cat)
	l.logger.Info("Catalog loaded", map[string]interface{}{
		"partners": cat.Len(),
		"duration": time.Since(start).String(),
	})
	return cat, nil
}

func (l *Loader) loadCached(ctx context.Context) (*Catalog, bool) {
	if l.cache == nil {
		return nil, false
	}

	raw, hit, err := l.cache.Get(ctx)
	if err != nil {
		l.logger.Warn("Catalog cache read failed", map[string]interface{}{"error": err})
		return nil, false
	}
	if !hit {
		return nil, false
	}

	cat, err := Parse(raw)
	if err != nil {
		l.logger.Warn("Discarding invalid cached catalog", map[string]interface{}{"error": err})
		if err := l.cache.Invalidate(ctx); err != nil {
			l.logger.Warn("Catalog cache invalidate failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}
	return cat, true
}

func (l *Loader) storeCached(ctx context.Context, cat *Catalog) {
	if l.cache == nil {
		return
	}
	raw, err := cat.MarshalJSON()
	if err == nil {
		err = l.cache.Set(ctx, raw)
	}
	if err != nil {
		l.logger.Warn("Catalog cache write failed", map[string]interface{}{"error": err})
	}
}

func (l *Loader) record(outcome string, cat *Catalog) {
	metrics.CatalogLoads.WithLabelValues(l.source.Name(), outcome).Inc()
	if cat != nil {
		metrics.CatalogPartners.Set(float64(cat.Len()))
	}
}

// NewSource builds the configured catalog source. The returned close function
// releases any connection the source holds and is always non-nil.
func NewSource(cfg *config.Config) (Source, func(), error) {
	noop := func() {}
	timeout := config.GetDuration(cfg.Catalog.Timeout)

	switch cfg.Catalog.Source {
	case config.CatalogSourceFile, "":
		return NewFileSource(cfg.Catalog.Path), noop, nil

	case config.CatalogSourceURL:
		return NewURLSource(cfg.Catalog.URL, httpclient.NewClient(timeout)), noop, nil

	case config.CatalogSourcePostgres:
		db, err := database.OpenPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, noop, errors.NewCatalogLoadFailedError(config.CatalogSourcePostgres, err)
		}
		source, err := NewPostgresSource(db, cfg.Catalog.Table)
		if err != nil {
			_ = db.Close()
			return nil, noop, errors.NewCatalogLoadFailedError(config.CatalogSourcePostgres, err)
		}
		return source, func() { _ = db.Close() }, nil

	case config.CatalogSourceElasticsearch:
		es, err := database.OpenElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, noop, errors.NewCatalogLoadFailedError(config.CatalogSourceElasticsearch, err)
		}
		return NewElasticsearchSource(es, cfg.Catalog.Index), noop, nil

	default:
		return nil, noop, errors.NewCatalogLoadFailedError(cfg.Catalog.Source,
			fmt.Errorf("unsupported catalog source %q", cfg.Catalog.Source))
	}
}

// Open loads the catalog once using the configured source and cache.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Catalog, error) {
	source, closeSource, err := NewSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	var cache *Cache
	if cfg.Catalog.Cache.Enabled {
		rc, err := database.OpenRedis(cfg.Database.Redis)
		if err != nil {
			log.Warn("catalog cache disabled", map[string]interface{}{"error": err})
		} else {
			defer rc.Close()
			cache = NewCache(rc, cfg.Catalog.Cache.Key, time.Duration(cfg.Catalog.Cache.TTL)*time.Second)
		}
	}

	if cfg.Catalog.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(cfg.Catalog.Timeout))
		defer cancel()
	}

	return NewLoader(source, cache, log).Load(ctx)
}
