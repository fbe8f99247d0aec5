package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware. When
// Enabled is false or no Redis client is configured, caching is disabled.
// Only GET requests whose path starts with one of Paths are cached, since
// order, KOT and table reads must always reflect the latest state. Keys are
// always scoped by restaurant so tenants never see each other's entries.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Paths        []string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Paths:        envList("CACHE_PATHS", "/v1/menu/categories,/v1/restaurants"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// Cacheable reports whether path falls under one of the configured prefixes.
func (c CacheConfig) Cacheable(path string) bool {
	for _, p := range c.Paths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
