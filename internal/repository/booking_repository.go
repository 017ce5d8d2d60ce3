package repository

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

const (
	// MaxSeatsPerBooking caps the seats a single booking may reserve.
	MaxSeatsPerBooking = 30
	// MaxPassengerNameLength caps the passenger name in characters.
	MaxPassengerNameLength = 100
)

// BookingSystem is the set of booking operations the HTTP layer relies
// on.  BookingRepo is the in-memory implementation.
type BookingSystem interface {
	CreateBooking(name string, routeID, seats int) (model.Booking, error)
	CancelBooking(name string) (model.Booking, error)
	ListBookings() []model.Booking
}

// BookingRepo is the booking ledger.  It shares the catalog's lock so a
// booking exists exactly while its seats are reserved on its route.
type BookingRepo struct {
	routes   *RouteRepo
	bookings []model.Booking
	newID    IDGenerator
	now      func() time.Time
}

var _ BookingSystem = (*BookingRepo)(nil)

// BookingOption customises a BookingRepo.
type BookingOption func(*BookingRepo)

// WithIDGenerator overrides the booking id generator (TimestampID by default).
func WithIDGenerator(g IDGenerator) BookingOption {
	return func(b *BookingRepo) {
		if g != nil {
			b.newID = g
		}
	}
}

// WithClock overrides the clock used for booking timestamps.
func WithClock(now func() time.Time) BookingOption {
	return func(b *BookingRepo) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBookingRepo returns an empty ledger over the given catalog and
// panics if routes is nil.
func NewBookingRepo(routes *RouteRepo, opts ...BookingOption) *BookingRepo {
	if routes == nil {
		panic("nil route repository passed to NewBookingRepo")
	}
	b := &BookingRepo{
		routes: routes,
		newID:  TimestampID,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateBooking reserves seats on routeID for name and records the
// booking.  Nothing is recorded or reserved when an error is returned.
func (b *BookingRepo) CreateBooking(name string, routeID, seats int) (model.Booking, error) {
	if err := validateBooking(name, seats); err != nil {
		return model.Booking{}, err
	}

	b.routes.mu.Lock()
	defer b.routes.mu.Unlock()

	route, err := b.routes.reserveLocked(routeID, seats)
	if err != nil {
		return model.Booking{}, fmt.Errorf("book route %d: %w", routeID, err)
	}

	now := b.now()
	bk := model.Booking{
		ID:            b.newID(now),
		PassengerName: name,
		RouteID:       route.id,
		RouteName:     route.name,
		DepartureTime: route.departureTime,
		Fare:          route.fare,
		Seats:         seats,
		TotalFare:     seats * route.fare,
		BookingTime:   now,
	}
	b.bookings = append(b.bookings, bk)
	return bk, nil
}

// CancelBooking removes the oldest booking whose passenger name matches
// name case-insensitively and returns its seats to the route.  Further
// bookings under the same name need further calls.
func (b *BookingRepo) CancelBooking(name string) (model.Booking, error) {
	if strings.TrimSpace(name) == "" {
		return model.Booking{}, ErrInvalidRequest
	}

	b.routes.mu.Lock()
	defer b.routes.mu.Unlock()

	for i, bk := range b.bookings {
		if !strings.EqualFold(bk.PassengerName, name) {
			continue
		}
		b.routes.releaseLocked(bk.RouteID, bk.Seats)
		b.bookings = append(b.bookings[:i], b.bookings[i+1:]...)
		return bk, nil
	}
	return model.Booking{}, ErrBookingNotFound
}

// ListBookings returns the active bookings in the order they were made.
func (b *BookingRepo) ListBookings() []model.Booking {
	b.routes.mu.RLock()
	defer b.routes.mu.RUnlock()
	out := make([]model.Booking, len(b.bookings))
	copy(out, b.bookings)
	return out
}

func validateBooking(name string, seats int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("passenger name is required: %w", ErrInvalidRequest)
	}
	if utf8.RuneCountInString(name) > MaxPassengerNameLength {
		return fmt.Errorf("passenger name longer than %d characters: %w", MaxPassengerNameLength, ErrInvalidRequest)
	}
	if seats <= 0 || seats > MaxSeatsPerBooking {
		return fmt.Errorf("seats must be between 1 and %d: %w", MaxSeatsPerBooking, ErrInvalidRequest)
	}
	return nil
}
