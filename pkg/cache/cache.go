package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"igreport/pkg/config"
	"igreport/pkg/logger"
	"igreport/pkg/stats"
)

// Cache stores finished profile scans
type Cache interface {
	Get(ctx context.Context, key string) (*stats.ProfileStats, bool, error)
	Set(ctx context.Context, key string, value *stats.ProfileStats, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the cache selected by cfg
func New(cfg config.CacheConfig, log logger.Logger) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.CacheNone:
		return Nop{}, nil
	case config.CacheMemory, "":
		return NewMemory(), nil
	case config.CacheRedis:
		return NewRedis(RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(ctx context.Context, key string) (*stats.ProfileStats, bool, error) {
	return nil, false, nil
}

func (Nop) Set(ctx context.Context, key string, value *stats.ProfileStats, ttl time.Duration) error {
	return nil
}

func (Nop) Delete(ctx context.Context, key string) error { return nil }

func (Nop) Close() error { return nil }
