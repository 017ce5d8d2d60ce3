package handler // contains HTTP handlers

import (
    "context"
    "net/http" // net/http provides status codes and response helpers
    "sort"
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint used by load balancers.  It returns a
// plain text "ok" with 200 as long as the process serves requests.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// CheckFunc reports whether an optional dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Ready returns the readiness endpoint.  Each named check runs with a short
// timeout; any failure turns the response into 503.  Optional dependencies
// (Redis, RabbitMQ) are only registered when they are configured, so a
// bare in-memory server is always ready.
func Ready(checks map[string]CheckFunc) echo.HandlerFunc {
    names := make([]string, 0, len(checks))
    for name := range checks {
        names = append(names, name)
    }
    sort.Strings(names)

    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()

        status := http.StatusOK
        results := make(map[string]string, len(names))
        for _, name := range names {
            if err := checks[name](ctx); err != nil {
                results[name] = err.Error()
                status = http.StatusServiceUnavailable
                continue
            }
            results[name] = "ok"
        }
        return c.JSON(status, echo.Map{"status": http.StatusText(status), "checks": results})
    }
}
