package config

import (
	"errors"
	"fmt"
)

// Validate rejects settings the service cannot run with. A missing upstream
// API key is not checked here: it is reported per request.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Cache.Backend {
	case CacheBackendAuto, CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q must be one of auto, redis, memory, none", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}
	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 2 {
		errs = append(errs, fmt.Errorf("upstream.temperature %.2f out of range [0,2]", c.Upstream.Temperature))
	}
	if c.Upstream.MaxTokens <= 0 {
		errs = append(errs, errors.New("upstream.max_tokens must be positive"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("ratelimit needs positive requests_per_window and window"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
