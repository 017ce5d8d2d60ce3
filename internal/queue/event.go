// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/bus-ticket-booking/internal/model"
)

// Event types published on the booking queue.
const (
    EventBookingCreated   = "booking.created"
    EventBookingCancelled = "booking.cancelled"
)

// BookingQueueName is the durable queue carrying BookingEvent messages.
const BookingQueueName = "booking.events"

// BookingEvent is published whenever a booking is created or cancelled.
// It carries the whole booking snapshot so consumers can log or audit it
// without calling back into the service.
type BookingEvent struct {
    Type        string `json:"type"`
    BookingID   string `json:"booking_id"`
    Name        string `json:"name"`
    BusID       int    `json:"bus_id"`
    Route       string `json:"route"`
    Time        string `json:"time"`
    Seats       int    `json:"seats"`
    TotalFare   int    `json:"total_fare"`
    BookingTime string `json:"booking_time"`
    OccurredAt  string `json:"occurred_at"`
}

// NewBookingEvent builds an event of the given type from a booking.
func NewBookingEvent(eventType string, b model.Booking, at time.Time) BookingEvent {
    return BookingEvent{
        Type:        eventType,
        BookingID:   b.ID,
        Name:        b.PassengerName,
        BusID:       b.RouteID,
        Route:       b.RouteName,
        Time:        b.DepartureTime,
        Seats:       b.Seats,
        TotalFare:   b.TotalFare,
        BookingTime: b.BookingTime.Format(model.BookingTimeLayout),
        OccurredAt:  at.UTC().Format(time.RFC3339),
    }
}
