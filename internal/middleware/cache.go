package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/hex"
    "encoding/json"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/bus-ticket-booking/internal/config"
)

// captureWriter tees the response body while forwarding it to the client.
// Once more than limit bytes are written the capture is abandoned.
type captureWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.overflow {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.overflow = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// requestHash identifies a listing request by method, path and query.
func requestHash(c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + " " + c.Path() + "?" + r.URL.RawQuery))
    return hex.EncodeToString(sum[:])
}

// skipCachedHeader reports headers that must not be replayed from cache.
func skipCachedHeader(k string) bool {
    k = http.CanonicalHeaderKey(k)
    switch k {
    case echo.HeaderContentLength, "X-Cache", echo.HeaderXRequestID, echo.HeaderRetryAfter:
        return true
    }
    return strings.HasPrefix(k, "X-Ratelimit")
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    out = append(out, hdrJSON...)
    return append(out, body...), nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// CurrentGeneration returns the cache generation; 0 before the first purge.
func CurrentGeneration(ctx context.Context, rdb *redis.Client, cfg config.CacheConfig) (int64, error) {
    gen, err := rdb.Get(ctx, cfg.GenerationKey()).Int64()
    if errors.Is(err, redis.Nil) {
        return 0, nil
    }
    return gen, err
}

// NewRedisCache caches successful GET responses under the generation read
// before the handler runs.  A listing computed before a booking change is
// therefore stored under a generation that no later request reads.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    if log == nil {
        log = zap.NewNop()
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            gen, err := CurrentGeneration(ctx, rdb, cfg)
            if err != nil {
                log.Warn("cache: generation unavailable", zap.Error(err))
                return next(c)
            }
            key := cfg.EntryKey(gen, requestHash(c))

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if skipCachedHeader(k) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(status, hdr.Get(echo.HeaderContentType), body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.overflow {
                return nil
            }
            payload, err := encodePayload(cw.status, c.Response().Header().Clone(), cw.buf.Bytes())
            if err != nil {
                return nil
            }
            // The request context may already be cancelled once the client has its answer.
            if err := rdb.Set(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err(); err != nil {
                log.Warn("cache: store failed", zap.String("key", key), zap.Error(err))
            }
            return nil
        }
    }
}

// NewCacheInvalidator starts a new cache generation after every successful
// booking or cancellation, since both change seat counts and the booking
// list.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    if log == nil {
        log = zap.NewNop()
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            if err != nil || c.Response().Status >= http.StatusBadRequest {
                return err
            }
            gen, removed, perr := PurgeCache(context.WithoutCancel(c.Request().Context()), rdb, cfg)
            if perr != nil {
                log.Warn("cache: purge failed", zap.String("prefix", cfg.Prefix), zap.Error(perr))
                return nil
            }
            log.Debug("cache: purged", zap.Int64("generation", gen), zap.Int("keys", removed))
            return nil
        }
    }
}

// PurgeCache advances the cache generation and then deletes entries of
// older generations.  The new generation is returned along with the number
// of keys removed.  Deleting is housekeeping only: once the generation has
// moved, stale entries are unreachable.
func PurgeCache(ctx context.Context, rdb *redis.Client, cfg config.CacheConfig) (int64, int, error) {
    gen, err := rdb.Incr(ctx, cfg.GenerationKey()).Result()
    if err != nil {
        return 0, 0, err
    }
    current := cfg.EntryKey(gen, "")
    removed := 0
    var cursor uint64
    for {
        keys, next, err := rdb.Scan(ctx, cursor, cfg.EntryPattern(), 100).Result()
        if err != nil {
            return gen, removed, err
        }
        stale := keys[:0]
        for _, k := range keys {
            if !strings.HasPrefix(k, current) {
                stale = append(stale, k)
            }
        }
        if len(stale) > 0 {
            n, err := rdb.Del(ctx, stale...).Result()
            if err != nil {
                return gen, removed, err
            }
            removed += int(n)
        }
        cursor = next
        if cursor == 0 {
            return gen, removed, nil
        }
    }
}
