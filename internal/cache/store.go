// Package cache holds the generation result stores. Every implementation is
// safe for concurrent use and treats each Set as a whole-entry replacement.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/af-corp/content-assistant/internal/config"
)

// Store is a key/value store with per-entry expiry. A miss is reported as
// (nil, false, nil); callers must be able to recompute any value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Noop never stores anything. It stands in when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// FromConfig picks the store for the configured backend. rdb may be nil when
// redis is not configured or unreachable. The returned name is for logging.
func FromConfig(cfg config.CacheConfig, rdb *redis.Client) (Store, string) {
	switch cfg.Backend {
	case config.CacheBackendNone:
		return Noop{}, "none"
	case config.CacheBackendMemory:
		return NewMemory(cfg.MaxEntries), "memory"
	case config.CacheBackendRedis:
		if rdb == nil {
			return Noop{}, "none"
		}
		return NewRedis(rdb, cfg.KeyPrefix), "redis"
	default:
		if rdb != nil {
			return NewRedis(rdb, cfg.KeyPrefix), "redis"
		}
		return NewMemory(cfg.MaxEntries), "memory"
	}
}
