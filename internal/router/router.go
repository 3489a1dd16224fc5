package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-booking/internal/handler"
	"github.com/iliyamo/exam-seat-booking/internal/middleware"
	"github.com/iliyamo/exam-seat-booking/internal/model"
)

// RegisterRoutes registers routes that require no authentication at
// all.  Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout works with just a refresh token in the body, so it stays
	// outside the JWT middleware.  Authenticated clients can also call
	// it with a bearer token and no body to end every session.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// round list sits behind the response cache when one is configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/rounds", p.GetRounds, cache)
		return
	}
	e.GET("/v1/rounds", p.GetRounds)
}

// RegisterApplicant registers the booking endpoints available to any
// authenticated user.  Submission additionally goes through the rate
// limiter: it triggers uploads and a seat reservation, so it is the
// endpoint worth protecting from bursts.
func RegisterApplicant(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		g.POST("/bookings", b.Submit, limiter)
	} else {
		g.POST("/bookings", b.Submit)
	}
	g.GET("/my-bookings", b.MyBookings)
}

// RegisterAdmin registers round management and booking review routes.
// Everything here requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, r *handler.AdminRoundHandler, b *handler.AdminBookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Rounds ----
	g.GET("/rounds", r.List)
	g.POST("/rounds", r.Create)
	g.PATCH("/rounds/:id/active", r.SetActive)
	g.DELETE("/rounds/:id", r.Delete)

	// ---- Bookings ----
	g.GET("/bookings", b.List)
	g.PATCH("/bookings/:id/status", b.Review)
	g.DELETE("/bookings/:id", b.Delete)
}
