package middleware

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/bus-ticket-booking/internal/config"
)

// takeToken refills the bucket at KEYS[1] by whole intervals since the last
// refill, then takes one token if any is left.
//
// ARGV: now_ms, capacity, refill_ms, ttl_ms
// returns {allowed (0|1), tokens_left, wait_ms}
var takeToken = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens') or capacity)
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp') or now)

local earned = math.floor((now - stamp) / refill)
if earned > 0 then
  tokens = math.min(capacity, tokens + earned)
  stamp = stamp + earned * refill
end
if tokens >= capacity then
  stamp = now
end

local allowed = 0
local wait = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
else
  wait = stamp + refill - now
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, tokens, wait}
`)

// RateLimiter throttles each client IP with token buckets kept in Redis, so
// every server instance shares one budget per client.
type RateLimiter struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
    log *zap.Logger
    now func() time.Time
}

// NewRateLimiter returns a limiter.  With rate limiting disabled or a nil
// client its middlewares pass every request through.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) *RateLimiter {
    if log == nil {
        log = zap.NewNop()
    }
    return &RateLimiter{cfg: cfg, rdb: rdb, log: log, now: time.Now}
}

// Reads limits browsing: the welcome page and both listings.
func (l *RateLimiter) Reads() echo.MiddlewareFunc { return l.limit("read", l.cfg.Read) }

// Writes limits booking creation and cancellation.
func (l *RateLimiter) Writes() echo.MiddlewareFunc { return l.limit("write", l.cfg.Write) }

func (l *RateLimiter) limit(class string, b config.Bucket) echo.MiddlewareFunc {
    if !l.cfg.Enabled || l.rdb == nil {
        return passThrough
    }
    limit := strconv.Itoa(b.Capacity)
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := l.bucketKey(class, c)
            res, err := takeToken.Run(c.Request().Context(), l.rdb, []string{key},
                l.now().UnixMilli(), b.Capacity, b.RefillEvery.Milliseconds(), b.TTL().Milliseconds(),
            ).Int64Slice()
            if err != nil || len(res) != 3 {
                // Redis trouble must not take bookings offline.
                l.log.Warn("ratelimit: bucket unavailable", zap.String("key", key), zap.Error(err))
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", limit)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
            if res[0] == 1 {
                return next(c)
            }

            retry := (time.Duration(res[2])*time.Millisecond + time.Second - 1) / time.Second
            h.Set("Retry-After", strconv.FormatInt(int64(retry), 10))
            l.log.Info("ratelimit: blocked", zap.String("class", class), zap.String("ip", c.RealIP()))
            return c.JSON(http.StatusTooManyRequests, echo.Map{"detail": "Too many requests"})
        }
    }
}

func (l *RateLimiter) bucketKey(class string, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    return l.cfg.Prefix + ":" + class + ":" + ip
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error { return next(c) }
}
