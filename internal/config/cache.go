package config

import (
    "strconv"
    "time"
)

// CacheConfig configures the Redis cache in front of GET /buses and GET
// /bookings.  Entries are namespaced by a generation counter stored at
// GenerationKey; every successful booking or cancellation increments it, so
// listings cached before the change are never read again and expire after
// TTL.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int // responses larger than this are not cached
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       getenv("CACHE_PREFIX", "bus-cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return cfg
}

// GenerationKey holds the current cache generation.
func (c CacheConfig) GenerationKey() string { return c.Prefix + ":gen" }

// EntryKey names a cached response within generation gen.
func (c CacheConfig) EntryKey(gen int64, hash string) string {
    return c.Prefix + ":v" + strconv.FormatInt(gen, 10) + ":" + hash
}

// EntryPattern matches cached responses of every generation.
func (c CacheConfig) EntryPattern() string { return c.Prefix + ":v*" }
