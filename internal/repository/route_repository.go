package repository

import (
	"fmt"
	"sync"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

// routeEntry is the catalog's private record for a route.  available is
// only touched by RouteRepo methods while holding the shared lock.
type routeEntry struct {
	id            int
	name          string
	departureTime string
	fare          int
	totalSeats    int
	available     int
}

func (e *routeEntry) snapshot() model.Route {
	return model.Route{
		ID:             e.id,
		Name:           e.name,
		DepartureTime:  e.departureTime,
		Fare:           e.fare,
		TotalSeats:     e.totalSeats,
		AvailableSeats: e.available,
	}
}

// RouteSeed describes a route used to populate the catalog.  TotalSeats
// defaults to model.DefaultTotalSeats when zero.
type RouteSeed struct {
	ID            int
	Name          string
	DepartureTime string
	Fare          int
	TotalSeats    int
}

// DefaultRoutes is the fixed catalog the service starts with.
var DefaultRoutes = []RouteSeed{
	{ID: 1, Name: "North Nazimabad - Power House", DepartureTime: "09:00 AM", Fare: 500},
	{ID: 2, Name: "KDA - Gulshan", DepartureTime: "12:00 PM", Fare: 700},
	{ID: 3, Name: "Ayesha Manzil - Bahria", DepartureTime: "05:00 PM", Fare: 600},
}

// RouteRepo is the static route catalog.  Routes are created once by
// NewRouteRepo and never added or removed afterwards; only the available
// seat count changes.  The mutex is shared with any BookingRepo built on
// top of the catalog so that a reservation and its ledger entry are
// applied together.
type RouteRepo struct {
	mu     *sync.RWMutex
	order  []int
	routes map[int]*routeEntry
}

// NewRouteRepo builds a catalog from seeds.  Seeds with a non-positive id,
// an empty name, a non-positive fare or a duplicate id are rejected.
func NewRouteRepo(seeds []RouteSeed) (*RouteRepo, error) {
	r := &RouteRepo{
		mu:     &sync.RWMutex{},
		order:  make([]int, 0, len(seeds)),
		routes: make(map[int]*routeEntry, len(seeds)),
	}
	for _, s := range seeds {
		total := s.TotalSeats
		if total == 0 {
			total = model.DefaultTotalSeats
		}
		if s.ID <= 0 || s.Name == "" || s.Fare <= 0 || total < 0 {
			return nil, fmt.Errorf("route %d: %w", s.ID, ErrInvalidRequest)
		}
		if _, dup := r.routes[s.ID]; dup {
			return nil, fmt.Errorf("duplicate route id %d: %w", s.ID, ErrInvalidRequest)
		}
		r.routes[s.ID] = &routeEntry{
			id:            s.ID,
			name:          s.Name,
			departureTime: s.DepartureTime,
			fare:          s.Fare,
			totalSeats:    total,
			available:     total,
		}
		r.order = append(r.order, s.ID)
	}
	return r, nil
}

// NewDefaultRouteRepo returns a catalog seeded with DefaultRoutes.
func NewDefaultRouteRepo() *RouteRepo {
	r, err := NewRouteRepo(DefaultRoutes)
	if err != nil {
		panic("invalid default routes: " + err.Error())
	}
	return r
}

// ListRoutes returns a snapshot of every route in seeding order.
func (r *RouteRepo) ListRoutes() []model.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Route, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.routes[id].snapshot())
	}
	return out
}

// GetRoute returns a snapshot of the route with the given id or
// ErrRouteNotFound.
func (r *RouteRepo) GetRoute(id int) (model.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.routes[id]
	if !ok {
		return model.Route{}, ErrRouteNotFound
	}
	return e.snapshot(), nil
}

// ReserveSeats takes count seats from the route.  State is left
// untouched on every error.
func (r *RouteRepo) ReserveSeats(id, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.reserveLocked(id, count)
	return err
}

// ReleaseSeats returns count seats to the route, never exceeding its
// capacity.  Unknown ids and non-positive counts are ignored.
func (r *RouteRepo) ReleaseSeats(id, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(id, count)
}

// reserveLocked expects r.mu to be held for writing.  It returns the
// route as it was before the reservation so callers can snapshot fare
// and labels.
func (r *RouteRepo) reserveLocked(id, count int) (*routeEntry, error) {
	if count <= 0 {
		return nil, ErrInvalidRequest
	}
	e, ok := r.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}
	if count > e.available {
		return nil, ErrInsufficientSeats
	}
	e.available -= count
	return e, nil
}

// releaseLocked expects r.mu to be held for writing.
func (r *RouteRepo) releaseLocked(id, count int) {
	if count <= 0 {
		return
	}
	e, ok := r.routes[id]
	if !ok {
		return
	}
	e.available += count
	if e.available > e.totalSeats {
		e.available = e.totalSeats
	}
}
