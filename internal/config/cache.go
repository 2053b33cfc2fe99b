package config

import (
	"os"
	"time"
)

// CacheConfig defines settings for the in-process reference data
// cache (action types, time rules, users).  TTL bounds how long a
// populated collection is served without a fresh database fetch;
// explicit invalidation on admin writes bypasses it.
type CacheConfig struct {
	TTL time.Duration
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: parseDur(getenv("REF_CACHE_TTL", "5m")),
	}
}

// Helper functions shared with redis.go and ratelimit.go
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
