// Package repository holds the in-memory route catalog and booking ledger
// together with the sentinel errors they report.  Handlers use errors.Is
// on these values to pick a response; none of them indicates corrupted
// state, so every one is safe to surface to a client.
package repository

import "errors"

var (
	// ErrRouteNotFound is returned when a route id is not in the catalog.
	// Handlers should translate this into an HTTP 404 response.
	ErrRouteNotFound = errors.New("route not found")

	// ErrInsufficientSeats is returned when a reservation asks for more
	// seats than the route has left.  Handlers translate this into 400.
	ErrInsufficientSeats = errors.New("insufficient seats available")

	// ErrBookingNotFound is returned when no booking matches a passenger name.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidRequest is returned for arguments the boundary layer should
	// already have rejected (blank names, seat counts outside 1..30).
	ErrInvalidRequest = errors.New("invalid request")
)

// IsNotFoundError reports whether err is one of the not-found sentinels.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRouteNotFound) || errors.Is(err, ErrBookingNotFound)
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsConflictError reports whether err stems from seat inventory.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInsufficientSeats)
}
