package handler // declare the package name; contains HTTP handlers

import (
    "context"  // context bounds the database ping
    "net/http" // net/http provides status codes
    "time"     // time for the ping timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health returns the health-check endpoint used by load balancers.  It
// answers "ok" with 200 while db responds to a ping and 503 otherwise.
// A nil db only reports that the process is up.
func Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second) // keep probes fast
            defer cancel()
            if err := db.PingContext(ctx); err != nil {
                return c.String(http.StatusServiceUnavailable, "db unavailable")
            }
        }
        return c.String(http.StatusOK, "ok") // write "ok" with a 200 OK status
    }
}
