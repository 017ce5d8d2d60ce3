package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/bus-ticket-booking/internal/config"
	"github.com/iliyamo/bus-ticket-booking/internal/handler"    // handlers for buses, bookings and health
	"github.com/iliyamo/bus-ticket-booking/internal/middleware" // request logging, rate limiting and caching
)

// Deps bundles what RegisterRoutes needs.  Redis may be nil, in which case
// rate limiting and caching are disabled.
type Deps struct {
	Buses     *handler.BusHandler
	Bookings  *handler.BookingHandler
	Checks    map[string]handler.CheckFunc
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       *zap.Logger
}

// New returns an Echo instance with the global middleware stack and the
// request validator installed.
func New(log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	return e
}

// RegisterRoutes registers every endpoint on e.  Health endpoints skip the
// rate limiter so probes are never throttled.  Route middleware runs in
// order: operation logging, then the read or write rate limit, then the
// listing cache or the cache invalidator.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(d.Checks))

	limiter := middleware.NewRateLimiter(d.RateLimit, d.Redis, d.Log)
	reads, writes := limiter.Reads(), limiter.Writes()
	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)
	purge := middleware.NewCacheInvalidator(d.Cache, d.Redis, d.Log)
	observe := func(op string) echo.MiddlewareFunc { return handler.Observe(op, d.Log) }

	e.GET("/", handler.Welcome, reads)
	e.GET("/buses", d.Buses.ListBuses, observe(handler.OpViewBuses), reads, cache)
	e.GET("/bookings", d.Bookings.ListBookings, observe(handler.OpViewBookings), reads, cache)
	e.POST("/bookings", d.Bookings.CreateBooking, observe(handler.OpBookTicket), writes, purge)
	e.DELETE("/bookings", d.Bookings.CancelBooking, observe(handler.OpCancelBooking), writes, purge)
}
