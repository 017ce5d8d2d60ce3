package handler

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// Operation names logged by Observe.
const (
    OpViewBuses     = "VIEW_BUSES"
    OpBookTicket    = "BOOK_TICKET"
    OpCancelBooking = "CANCEL_BOOKING"
    OpViewBookings  = "VIEW_BOOKINGS"
)

// Observe logs the start and end of an operation.  Register it as the
// first route middleware so requests answered by the cache or refused by
// the rate limiter are logged too.  The response is never altered.
func Observe(op string, log *zap.Logger) echo.MiddlewareFunc {
    if log == nil {
        log = zap.NewNop()
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            log.Info(op+" operation started", zap.String("operation", op))
            err := next(c)
            fields := []zap.Field{
                zap.String("operation", op),
                zap.Int("status", c.Response().Status),
                zap.Duration("duration", time.Since(start)),
            }
            if err != nil {
                fields = append(fields, zap.Error(err))
            }
            log.Info(op+" operation completed", fields...)
            return err
        }
    }
}
