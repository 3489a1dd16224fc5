package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.  The
// public round list is the main consumer: it is read-heavy and tolerates
// a short staleness window.  When Enabled is false or no Redis client is
// available, caching is disabled.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // HTTP methods to cache, upper-cased
	TTL          time.Duration
	KeyStrategy  string // which request parts build the cache key
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from environment variables,
// falling back to defaults when unset.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1048576),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
