package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/raffle-tickets/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/raffle-tickets/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication and
// installs the JSON error handler.  db backs the health check and may be
// nil.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	// Every error that reaches Echo is rendered as {"error": "..."}.
	e.HTTPErrorHandler = handler.ErrorHandler
	// Map GET /healthz to the health handler for load balancers.
	e.GET("/healthz", handler.Health(db))
}

// RegisterRaffle registers the raffle and ticket routes.  Reads are public
// and go through the rate limiter and the response cache; writes require
// a valid access token carrying adminRole.  A nil cache disables caching.
func RegisterRaffle(e *echo.Echo, h *handler.RaffleHandler, cache *middleware.RaffleCache, limiter echo.MiddlewareFunc, jwtSecret, adminRole string) {
	if limiter == nil {
		limiter = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	// Middleware is attached per route: both sets share the /raffle prefix.
	// ---- Public reads ----
	read := []echo.MiddlewareFunc{limiter, cache.Middleware()}
	e.GET("/raffle/:id", h.GetRaffle, read...)
	e.GET("/raffle/:id/tickets", h.ListTickets, read...)
	e.GET("/raffle/:id/tickets/summary", h.Summary, read...)

	// ---- Admin writes ----
	// JWTAuth runs before the limiter so per-user keys see the subject.
	write := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(adminRole),
		limiter,
	}
	e.POST("/raffle/:id/tickets/init", h.InitTickets, write...)
	e.PATCH("/raffle/:id/tickets/status", h.UpdateStatus, write...)
	e.POST("/raffle/:id/complete-sale", h.CompleteSale, write...)
}
