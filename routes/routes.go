package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sobhit1/feed-chain/app"
	"github.com/sobhit1/feed-chain/handlers"
	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/middleware"
)

// RoleAdmin grants access to the /api/v1/admin routes.
const RoleAdmin = "admin"

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	return observability.InstrumentHandler(NewRouter(deps))
}

// NewRouter builds the router without the tracing wrapper. Every request
// passes correlation, logging, panic recovery, the CORS gate and the auth
// stage, in that order, before reaching a handler.
func NewRouter(deps *app.Dependencies) chi.Router {
	r := chi.NewRouter()
	mapper := deps.ErrorMapper()

	// Core middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.Correlation(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recover(mapper, deps.Metrics, deps.Logger))
	r.Use(middleware.Timeout(deps.Config.Server.HandlerTimeout, mapper))

	// CORS gate
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.Config.CORS.AllowedOrigins,
		MaxAge:         deps.Config.CORS.MaxAge,
	}, mapper, deps.Metrics, deps.Logger))

	// Authentication applies to every path; the route policy decides which
	// ones are public.
	r.Use(deps.AuthMiddleware.Authenticate)

	r.NotFound(handlers.NotFoundHandler(deps))
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler(deps))

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReadiness)

	// Verification keys
	r.Get("/.well-known/jwks.json", handlers.JWKSHandler(deps, deps.Logger))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Session endpoints (public per route policy)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", handlers.AuthRefreshHandler(deps))
			r.Post("/logout", handlers.AuthLogoutHandler(deps))
		})

		r.Get("/me", handlers.GetCurrentUserHandler(deps))

		// Operator endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole(RoleAdmin))
			r.Get("/me", handlers.GetCurrentUserHandler(deps))
		})
	})

	return r
}
