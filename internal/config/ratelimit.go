package config

import "time"

// Bucket is one token bucket: Capacity requests in a burst, then one more
// every RefillEvery.
type Bucket struct {
    Capacity    int
    RefillEvery time.Duration
}

// RateLimitConfig configures per-client rate limiting.  Listings and the
// welcome page draw from Read; creating and cancelling bookings draw from
// the tighter Write bucket so seat changes cannot be hammered while the
// catalog stays browsable.
type RateLimitConfig struct {
    Enabled bool
    Read    Bucket
    Write   Bucket
    Prefix  string // Redis key prefix
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Read: Bucket{
            Capacity:    envInt("RATE_LIMIT_READ_CAPACITY", 60),
            RefillEvery: envDur("RATE_LIMIT_READ_REFILL_EVERY", time.Second),
        },
        Write: Bucket{
            Capacity:    envInt("RATE_LIMIT_WRITE_CAPACITY", 10),
            RefillEvery: envDur("RATE_LIMIT_WRITE_REFILL_EVERY", 6*time.Second),
        },
        Prefix: getenv("RATE_LIMIT_PREFIX", "bus-rl"),
    }
    cfg.Read = cfg.Read.normalized()
    cfg.Write = cfg.Write.normalized()
    return cfg
}

func (b Bucket) normalized() Bucket {
    if b.Capacity < 1 {
        b.Capacity = 1
    }
    if b.RefillEvery <= 0 {
        b.RefillEvery = time.Second
    }
    return b
}

// TTL is how long an idle bucket is kept: long enough to refill completely.
func (b Bucket) TTL() time.Duration {
    return time.Duration(b.Capacity+1) * b.RefillEvery
}
