package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/bus-ticket-booking/internal/model"
    "github.com/iliyamo/bus-ticket-booking/internal/queue"
    "github.com/iliyamo/bus-ticket-booking/internal/repository"
    "github.com/iliyamo/bus-ticket-booking/internal/service"
)

// BookingHandler exposes the booking ledger over HTTP.  Request bodies are
// validated here before the ledger is called; the ledger repeats the
// checks so it stays safe for other callers.
type BookingHandler struct {
    Bookings repository.BookingSystem // ledger implementation
    Events   service.EventPublisher   // booking event sink
    Log      *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.  A nil publisher disables
// events and a nil logger discards logs; a nil booking system panics.
func NewBookingHandler(bookings repository.BookingSystem, events service.EventPublisher, log *zap.Logger) *BookingHandler {
    if bookings == nil {
        panic("nil booking system passed to NewBookingHandler")
    }
    if events == nil {
        events = service.NopPublisher{}
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &BookingHandler{Bookings: bookings, Events: events, Log: log}
}

// CreateBooking handles POST /bookings.  It returns 200 with the booking,
// 404 when the bus does not exist, 400 when too few seats are left and
// 422 when the body fails validation.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    var req BookingRequest
    if err := c.Bind(&req); err != nil {
        return errorResponse(c, http.StatusUnprocessableEntity, "invalid request body")
    }
    if err := c.Validate(&req); err != nil {
        return writeError(c, h.Log, err)
    }
    b, err := h.Bookings.CreateBooking(req.Name, req.BusID, req.Seats)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    h.publish(c, queue.EventBookingCreated, b)
    return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CancelBooking handles DELETE /bookings.  The first booking made under the
// given name (case-insensitive) is cancelled; 404 when none matches.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    var req CancelRequest
    if err := c.Bind(&req); err != nil {
        return errorResponse(c, http.StatusUnprocessableEntity, "invalid request body")
    }
    if err := c.Validate(&req); err != nil {
        return writeError(c, h.Log, err)
    }
    b, err := h.Bookings.CancelBooking(req.Name)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    h.publish(c, queue.EventBookingCancelled, b)
    return c.JSON(http.StatusOK, echo.Map{"message": "Booking cancelled successfully"})
}

// ListBookings handles GET /bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
    bookings := h.Bookings.ListBookings()
    out := make([]BookingResponse, 0, len(bookings))
    for _, b := range bookings {
        out = append(out, toBookingResponse(b))
    }
    return c.JSON(http.StatusOK, out)
}

// publish sends a booking event.  Failures are logged and never change the
// response; the booking has already been applied.
func (h *BookingHandler) publish(c echo.Context, eventType string, b model.Booking) {
    ev := queue.NewBookingEvent(eventType, b, time.Now())
    if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
        h.Log.Warn("booking event not published",
            zap.String("type", eventType),
            zap.String("booking_id", b.ID),
            zap.Error(err))
    }
}
