package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRouteRepo_Seeds(t *testing.T) {
	r := NewDefaultRouteRepo()

	routes := r.ListRoutes()
	require.Len(t, routes, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{routes[0].ID, routes[1].ID, routes[2].ID})
	assert.Equal(t, "North Nazimabad - Power House", routes[0].Name)
	assert.Equal(t, "09:00 AM", routes[0].DepartureTime)
	assert.Equal(t, 500, routes[0].Fare)
	assert.Equal(t, 700, routes[1].Fare)
	assert.Equal(t, 600, routes[2].Fare)
	for _, rt := range routes {
		assert.Equal(t, 30, rt.TotalSeats)
		assert.Equal(t, 30, rt.AvailableSeats)
	}
}

func TestNewRouteRepo_RejectsBadSeeds(t *testing.T) {
	tests := []struct {
		name  string
		seeds []RouteSeed
	}{
		{"zero id", []RouteSeed{{ID: 0, Name: "A", Fare: 1}}},
		{"empty name", []RouteSeed{{ID: 1, Fare: 1}}},
		{"zero fare", []RouteSeed{{ID: 1, Name: "A"}}},
		{"negative seats", []RouteSeed{{ID: 1, Name: "A", Fare: 1, TotalSeats: -1}}},
		{"duplicate id", []RouteSeed{{ID: 1, Name: "A", Fare: 1}, {ID: 1, Name: "B", Fare: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouteRepo(tt.seeds)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestGetRoute(t *testing.T) {
	r := NewDefaultRouteRepo()

	rt, err := r.GetRoute(2)
	require.NoError(t, err)
	assert.Equal(t, "KDA - Gulshan", rt.Name)

	_, err = r.GetRoute(99)
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestReserveSeats(t *testing.T) {
	r := NewDefaultRouteRepo()

	require.NoError(t, r.ReserveSeats(1, 5))
	assert.Equal(t, 25, available(t, r, 1))

	assert.ErrorIs(t, r.ReserveSeats(1, 26), ErrInsufficientSeats)
	assert.Equal(t, 25, available(t, r, 1), "failed reservation leaves seats unchanged")

	assert.ErrorIs(t, r.ReserveSeats(1, 0), ErrInvalidRequest)
	assert.ErrorIs(t, r.ReserveSeats(1, -3), ErrInvalidRequest)
	assert.ErrorIs(t, r.ReserveSeats(42, 1), ErrRouteNotFound)
	assert.Equal(t, 25, available(t, r, 1))

	require.NoError(t, r.ReserveSeats(1, 25))
	assert.Equal(t, 0, available(t, r, 1))
	assert.ErrorIs(t, r.ReserveSeats(1, 1), ErrInsufficientSeats)
}

func TestReleaseSeats_ClampsAndIgnoresUnknown(t *testing.T) {
	r := NewDefaultRouteRepo()
	require.NoError(t, r.ReserveSeats(3, 10))

	r.ReleaseSeats(3, 4)
	assert.Equal(t, 24, available(t, r, 3))

	r.ReleaseSeats(3, 100)
	assert.Equal(t, 30, available(t, r, 3), "release never exceeds capacity")

	r.ReleaseSeats(3, -5)
	assert.Equal(t, 30, available(t, r, 3))

	assert.NotPanics(t, func() { r.ReleaseSeats(77, 5) })
}

func TestListRoutes_ReturnsSnapshots(t *testing.T) {
	r := NewDefaultRouteRepo()

	first := r.ListRoutes()
	first[0].AvailableSeats = 0
	first[0].Name = "changed"

	again := r.ListRoutes()
	assert.Equal(t, 30, again[0].AvailableSeats)
	assert.Equal(t, "North Nazimabad - Power House", again[0].Name)
	assert.Equal(t, again, r.ListRoutes(), "listing is idempotent")
}

func available(t *testing.T, r *RouteRepo, id int) int {
	t.Helper()
	rt, err := r.GetRoute(id)
	require.NoError(t, err)
	return rt.AvailableSeats
}
