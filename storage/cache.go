package storage

import (
	"context"
	"errors"
	"fmt"

	"rea_scraper/config"
)

var ErrCacheMiss = errors.New("cache key not found")

// Cache holds URL batches between a search run and the scrape runs after it.
type Cache interface {
	Put(ctx context.Context, key string, urls []string) error
	Keys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// OpenCache connects the backend named in cfg.Backend.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "redis":
		return NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "sqlite":
		return NewSQLiteCache(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
