package handler

import (
    "errors"
    "net/http"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/bus-ticket-booking/internal/repository"
)

// errorResponse writes the JSON body used for every failed request.
func errorResponse(c echo.Context, status int, detail string) error {
    return c.JSON(status, echo.Map{"detail": detail})
}

// writeError maps a booking error onto an HTTP response.  Anything that is
// not a known sentinel becomes a 500 so internals never leak to clients.
func writeError(c echo.Context, log *zap.Logger, err error) error {
    var verrs validator.ValidationErrors
    switch {
    case errors.Is(err, repository.ErrRouteNotFound):
        return errorResponse(c, http.StatusNotFound, "Bus not found")
    case errors.Is(err, repository.ErrInsufficientSeats):
        return errorResponse(c, http.StatusBadRequest, "Not enough seats available")
    case errors.Is(err, repository.ErrBookingNotFound):
        return errorResponse(c, http.StatusNotFound, "Booking not found")
    case errors.As(err, &verrs):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": validationDetails(verrs)})
    case errors.Is(err, repository.ErrInvalidRequest):
        return errorResponse(c, http.StatusUnprocessableEntity, err.Error())
    default:
        log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
        return errorResponse(c, http.StatusInternalServerError, "Internal server error")
    }
}

// fieldError describes one failed validation rule on a request field.
type fieldError struct {
    Field string `json:"field"`
    Rule  string `json:"rule"`
    Param string `json:"param,omitempty"`
}

func validationDetails(verrs validator.ValidationErrors) []fieldError {
    out := make([]fieldError, 0, len(verrs))
    for _, fe := range verrs {
        out = append(out, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
    }
    return out
}
