package model

import "time"

// Booking records a passenger's reservation of seats on a route.  The
// route fields are captured when the booking is made so later reads do
// not depend on the catalog.  A booking is never mutated after creation;
// cancelling removes it from the ledger.
//
// Fields:
//  ID            – booking token (e.g. BK20240101093000).
//  PassengerName – name given at booking time; matched case-insensitively.
//  RouteID       – id of the route booked.
//  RouteName     – route description at booking time.
//  DepartureTime – departure label at booking time.
//  Fare          – per-seat fare at booking time.
//  Seats         – number of seats reserved.
//  TotalFare     – Seats × Fare, frozen at creation.
//  BookingTime   – creation timestamp.
type Booking struct {
    ID            string
    PassengerName string
    RouteID       int
    RouteName     string
    DepartureTime string
    Fare          int
    Seats         int
    TotalFare     int
    BookingTime   time.Time
}

// BookingTimeLayout formats BookingTime wherever a booking leaves the
// process: HTTP responses and broker events.
const BookingTimeLayout = time.RFC3339Nano
