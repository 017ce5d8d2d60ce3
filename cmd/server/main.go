package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/bus-ticket-booking/internal/config"
	"github.com/iliyamo/bus-ticket-booking/internal/database"
	"github.com/iliyamo/bus-ticket-booking/internal/handler"
	"github.com/iliyamo/bus-ticket-booking/internal/logger"
	"github.com/iliyamo/bus-ticket-booking/internal/queue"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
	"github.com/iliyamo/bus-ticket-booking/internal/router"
	"github.com/iliyamo/bus-ticket-booking/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	log, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Booking state lives only in memory and is re-seeded on every start.
	routes := repository.NewDefaultRouteRepo()
	bookings := repository.NewBookingRepo(routes, repository.WithIDGenerator(repository.IDGeneratorFor(cfg.BookingIDStrategy)))

	checks := map[string]handler.CheckFunc{}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable; rate limiting and caching disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub := service.NewRabbitPublisher(cfg.AMQPURL, log.Named("publisher"))
		defer pub.Close()
		events = pub
	}

	if cfg.ConsumerEnabled {
		startConsumer(ctx, cfg, log)
	}

	e := router.New(log)
	router.RegisterRoutes(e, router.Deps{
		Buses:     handler.NewBusHandler(routes),
		Bookings:  handler.NewBookingHandler(bookings, events, log),
		Checks:    checks,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Log:       log,
	})

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// startConsumer runs the booking audit consumer in the background.  The
// MySQL sink is attached only when an audit DSN is configured and reachable.
func startConsumer(ctx context.Context, cfg config.Config, log *zap.Logger) {
	var audit queue.AuditSink
	if dsn := cfg.AuditDSN(); dsn != "" {
		db, err := database.Open(dsn)
		if err != nil {
			log.Warn("audit database unavailable; writing booking.log only", zap.Error(err))
		} else {
			repo := repository.NewAuditRepo(db)
			if err := repo.EnsureSchema(ctx); err != nil {
				log.Warn("audit schema setup failed", zap.Error(err))
			}
			audit = repo
			go func() {
				<-ctx.Done()
				_ = db.Close()
			}()
		}
	}

	consumer := queue.NewConsumer(cfg.AMQPURL, cfg.AuditLogDir, audit, log.Named("consumer"))
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking consumer stopped", zap.Error(err))
		}
	}()
}
