package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-ticket-booking/internal/model"
)

// RouteLister is the part of the route catalog the bus endpoints need.
type RouteLister interface {
    ListRoutes() []model.Route
}

// BusHandler serves the bus catalog.
type BusHandler struct {
    Routes RouteLister
}

// NewBusHandler constructs a BusHandler and panics if routes is nil.
func NewBusHandler(routes RouteLister) *BusHandler {
    if routes == nil {
        panic("nil route lister passed to NewBusHandler")
    }
    return &BusHandler{Routes: routes}
}

// ListBuses handles GET /buses and returns every route with its current
// seat availability.
func (h *BusHandler) ListBuses(c echo.Context) error {
    routes := h.Routes.ListRoutes()
    out := make([]BusResponse, 0, len(routes))
    for _, r := range routes {
        out = append(out, toBusResponse(r))
    }
    return c.JSON(http.StatusOK, out)
}

// Welcome handles GET / with a short description of the API.
func Welcome(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "message": "Welcome to Bus Booking System API",
        "endpoints": echo.Map{
            "GET /buses":       "View all buses",
            "POST /bookings":   "Book a ticket",
            "DELETE /bookings": "Cancel booking",
            "GET /bookings":    "View all bookings",
        },
    })
}
