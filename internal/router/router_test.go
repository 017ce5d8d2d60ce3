package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/bus-ticket-booking/internal/config"
	"github.com/iliyamo/bus-ticket-booking/internal/handler"
	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zap.NewNop()
	routes := repository.NewDefaultRouteRepo()
	bookings := repository.NewBookingRepo(routes)

	e := New(log)
	RegisterRoutes(e, Deps{
		Buses:     handler.NewBusHandler(routes),
		Bookings:  handler.NewBookingHandler(bookings, nil, log),
		RateLimit: config.RateLimitConfig{Enabled: true},
		Cache:     config.CacheConfig{Enabled: true},
		Log:       log,
	})
	return e
}

func call(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutesWithoutRedis(t *testing.T) {
	e := newServer(t)

	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/buses", "").Code)

	rec := call(e, http.MethodPost, "/bookings", `{"name":"Alice","bus_id":2,"seats":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := uuid.Parse(rec.Header().Get(echo.HeaderXRequestID))
	assert.NoError(t, err, "request id is a uuid")

	assert.Contains(t, call(e, http.MethodGet, "/buses", "").Body.String(), `"seats_available":26`)
	assert.Contains(t, call(e, http.MethodGet, "/bookings", "").Body.String(), `"name":"Alice"`)

	assert.Equal(t, http.StatusOK, call(e, http.MethodDelete, "/bookings", `{"name":"ALICE"}`).Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodDelete, "/bookings", `{"name":"alice"}`).Code)
}

func TestUnknownPath(t *testing.T) {
	e := newServer(t)

	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, call(e, http.MethodPut, "/bookings", "").Code)
}

// heldLister pauses one ListRoutes call after the snapshot is taken.
type heldLister struct {
	routes  *repository.RouteRepo
	hold    atomic.Bool
	held    chan struct{}
	release chan struct{}
}

func (l *heldLister) ListRoutes() []model.Route {
	out := l.routes.ListRoutes()
	if l.hold.CompareAndSwap(true, false) {
		close(l.held)
		<-l.release
	}
	return out
}

type redisServer struct {
	e      *echo.Echo
	lister *heldLister
	logs   *observer.ObservedLogs
}

func newRedisServer(t *testing.T, writeCapacity int) *redisServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	routes := repository.NewDefaultRouteRepo()
	lister := &heldLister{routes: routes, held: make(chan struct{}), release: make(chan struct{})}

	e := New(log)
	RegisterRoutes(e, Deps{
		Buses:    handler.NewBusHandler(lister),
		Bookings: handler.NewBookingHandler(repository.NewBookingRepo(routes), nil, log),
		Redis:    rdb,
		RateLimit: config.RateLimitConfig{
			Enabled: true,
			Read:    config.Bucket{Capacity: 100, RefillEvery: time.Second},
			Write:   config.Bucket{Capacity: writeCapacity, RefillEvery: time.Minute},
			Prefix:  "rl",
		},
		Cache: config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "bus-cache", MaxBodyBytes: 1 << 20},
		Log:   log,
	})
	return &redisServer{e: e, lister: lister, logs: logs}
}

func TestListingsCachedUntilBooking(t *testing.T) {
	s := newRedisServer(t, 10)

	assert.Equal(t, "MISS", call(s.e, http.MethodGet, "/bookings", "").Header().Get("X-Cache"))
	assert.Equal(t, "HIT", call(s.e, http.MethodGet, "/bookings", "").Header().Get("X-Cache"))
	assert.Equal(t, "MISS", call(s.e, http.MethodGet, "/buses", "").Header().Get("X-Cache"))

	require.Equal(t, http.StatusOK, call(s.e, http.MethodPost, "/bookings", `{"name":"Alice","bus_id":1,"seats":5}`).Code)

	rec := call(s.e, http.MethodGet, "/buses", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"bus_id":1,"route":"North Nazimabad - Power House","time":"09:00 AM","fare":500,"seats_available":25`)
	rec = call(s.e, http.MethodGet, "/bookings", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"name":"Alice"`)
}

func TestListingReadDuringBookingIsNotCachedStale(t *testing.T) {
	s := newRedisServer(t, 10)
	s.lister.hold.Store(true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		call(s.e, http.MethodGet, "/buses", "")
	}()
	<-s.lister.held
	require.Equal(t, http.StatusOK, call(s.e, http.MethodPost, "/bookings", `{"name":"Alice","bus_id":1,"seats":5}`).Code)
	close(s.lister.release)
	wg.Wait()

	for i := 0; i < 2; i++ {
		rec := call(s.e, http.MethodGet, "/buses", "")
		assert.Contains(t, rec.Body.String(), `"seats_available":25`, "listing agrees with the ledger")
	}
}

func TestBookingWritesHaveTighterLimit(t *testing.T) {
	s := newRedisServer(t, 2)

	assert.Equal(t, http.StatusOK, call(s.e, http.MethodPost, "/bookings", `{"name":"A","bus_id":1,"seats":1}`).Code)
	assert.Equal(t, http.StatusOK, call(s.e, http.MethodPost, "/bookings", `{"name":"B","bus_id":1,"seats":1}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, call(s.e, http.MethodPost, "/bookings", `{"name":"C","bus_id":1,"seats":1}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, call(s.e, http.MethodDelete, "/bookings", `{"name":"A"}`).Code)

	assert.Equal(t, http.StatusOK, call(s.e, http.MethodGet, "/buses", "").Code)
	assert.Contains(t, call(s.e, http.MethodGet, "/buses", "").Body.String(), `"seats_available":28`)
}

func TestCacheHitsAreLoggedAsOperations(t *testing.T) {
	s := newRedisServer(t, 10)

	call(s.e, http.MethodGet, "/buses", "")
	require.Equal(t, "HIT", call(s.e, http.MethodGet, "/buses", "").Header().Get("X-Cache"))

	assert.Equal(t, 2, s.logs.FilterMessage("VIEW_BUSES operation started").Len())
	assert.Equal(t, 2, s.logs.FilterMessage("VIEW_BUSES operation completed").Len())
}
