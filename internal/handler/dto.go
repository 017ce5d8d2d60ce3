package handler

import "github.com/iliyamo/bus-ticket-booking/internal/model"

// BusResponse is a route as exposed by GET /buses.
type BusResponse struct {
    BusID          int    `json:"bus_id"`
    Route          string `json:"route"`
    Time           string `json:"time"`
    Fare           int    `json:"fare"`
    SeatsAvailable int    `json:"seats_available"`
}

// BookingRequest is the body of POST /bookings.  Name length is counted
// in characters, matching the ledger's own check.
type BookingRequest struct {
    Name  string `json:"name" validate:"required,min=1,max=100"`
    BusID int    `json:"bus_id" validate:"gt=0"`
    Seats int    `json:"seats" validate:"gt=0,lte=30"`
}

// BookingResponse is a booking as returned by POST and GET /bookings.
type BookingResponse struct {
    BookingID   string `json:"booking_id"`
    Name        string `json:"name"`
    BusID       int    `json:"bus_id"`
    Route       string `json:"route"`
    Time        string `json:"time"`
    Seats       int    `json:"seats"`
    TotalFare   int    `json:"total_fare"`
    BookingTime string `json:"booking_time"`
}

// CancelRequest is the body of DELETE /bookings.
type CancelRequest struct {
    Name string `json:"name" validate:"required,min=1"`
}

func toBusResponse(r model.Route) BusResponse {
    return BusResponse{
        BusID:          r.ID,
        Route:          r.Name,
        Time:           r.DepartureTime,
        Fare:           r.Fare,
        SeatsAvailable: r.AvailableSeats,
    }
}

func toBookingResponse(b model.Booking) BookingResponse {
    return BookingResponse{
        BookingID:   b.ID,
        Name:        b.PassengerName,
        BusID:       b.RouteID,
        Route:       b.RouteName,
        Time:        b.DepartureTime,
        Seats:       b.Seats,
        TotalFare:   b.TotalFare,
        BookingTime: b.BookingTime.Format(model.BookingTimeLayout),
    }
}
