package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/openclock/attendance-service/internal/handler"    // import the handlers that implement business logic
	"github.com/openclock/attendance-service/internal/middleware" // import middleware for JWT authentication and admin enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Register a POST endpoint to log out.  The handler accepts a JSON body
	// containing a `refresh_token` and/or an Authorization header and will
	// invalidate the matching sessions.  If the token is valid, a 204
	// response is returned; otherwise 400/401/500 are possible depending on
	// the error.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler.  This route lives
	// at the top level (outside of the protected group) so it does not
	// require a JWT.  Clients can therefore call either /v1/auth/logout or
	// /v1/logout with a valid refresh token in the body to terminate a
	// session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterCheckIns registers the attendance endpoints under /v1.  All
// routes require a valid JWT; the override endpoint additionally
// requires the admin flag.
func RegisterCheckIns(e *echo.Echo, ci *handler.CheckInHandler, q *handler.QueryHandler, ad *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	// ---- Recording ----
	g.POST("/check-ins", ci.Create)              // record one attendance event
	g.POST("/check-ins/manual", ci.CreateManual) // backfill with an explicit timestamp
	g.GET("/check-ins/today", ci.Today)          // the caller's events for the current day
	g.GET("/action-types", ad.ListActionTypes)   // catalog for rendering check-in buttons
	g.GET("/time-rules", ad.ListTimeRules)       // rules, so clients can show the expected window

	// ---- History ----
	g.GET("/check-ins", q.List)                // paginated range listing
	g.GET("/reports/monthly", q.Monthly)       // per-user monthly summary
	g.GET("/reports/statistics", q.Statistics) // aggregate counters over a range

	// ---- Admin override ----
	g.PATCH("/check-ins/:id", ci.Override, middleware.RequireAdmin())
}

// RegisterAdmin registers the reference-data management endpoints
// under /v1/admin.  All routes require a valid JWT carrying the admin
// flag.
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireAdmin(),
	)

	// ---- Action types ----
	g.POST("/action-types", ad.CreateActionType)
	g.PATCH("/action-types/:id", ad.UpdateActionType)
	g.PUT("/action-types/:id", ad.UpdateActionType) // allow full updates via PUT as well
	g.DELETE("/action-types/:id", ad.DeleteActionType)

	// ---- Time rules ----
	g.GET("/time-rules", ad.ListTimeRules)
	g.POST("/time-rules", ad.CreateTimeRule)
	g.PATCH("/time-rules/:id", ad.UpdateTimeRule)
	g.PUT("/time-rules/:id", ad.UpdateTimeRule)
	g.DELETE("/time-rules/:id", ad.DeleteTimeRule)

	// ---- Users ----
	g.GET("/users", ad.ListUsers)
	g.PATCH("/users/:id/admin", ad.SetUserAdmin)
	g.DELETE("/users/:id", ad.DeleteUser)
}
