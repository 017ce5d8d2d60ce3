package model

// Route represents a bus service in the static catalog.  Route values
// handed out by the catalog are snapshots; the live seat count is owned
// by the catalog and changes only through its reserve/release methods.
//
// Fields:
//  ID             – unique positive identifier, fixed at seeding.
//  Name           – origin/destination label.
//  DepartureTime  – free-form departure label (e.g. "09:00 AM").
//  Fare           – price per seat.
//  TotalSeats     – seat capacity of the bus.
//  AvailableSeats – seats still free when the snapshot was taken.
type Route struct {
    ID             int    // route id (bus_id on the wire)
    Name           string // route description
    DepartureTime  string // departure label
    Fare           int    // fare per seat
    TotalSeats     int    // capacity
    AvailableSeats int    // free seats at snapshot time
}

// DefaultTotalSeats is the capacity of a route when none is given.
const DefaultTotalSeats = 30
