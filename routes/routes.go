package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/upb/rental-portal/app"
	"github.com/upb/rental-portal/handlers"
	"github.com/upb/rental-portal/internal/auth"
	portalmw "github.com/upb/rental-portal/middleware"
	"github.com/upb/rental-portal/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(portalmw.RequestContext)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	var redisPinger handlers.RedisPinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	health := handlers.NewHealthHandler(deps.DB, redisPinger, deps.Logger)
	if deps.Validator != nil {
		health.WithStats("cognito", func() interface{} { return deps.Validator.GetCacheStats() })
	}
	if deps.Audit != nil {
		health.WithStats("access_audit", func() interface{} { return deps.Audit.GetStats() })
	}
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	// Everything below needs the caller's session
	r.Group(func(r chi.Router) {
		r.Use(deps.SessionMiddleware.LoadSession)

		r.Route("/api/v1", func(r chi.Router) {
			r.With(middleware.Timeout(10*time.Second)).Get("/guard", handlers.GuardDecisionHandler(deps))
			r.Get("/guard/stream", handlers.GuardStreamHandler(deps))

			// Admin endpoints go through the same route policy as pages
			r.Route("/admin", func(r chi.Router) {
				r.Use(deps.GuardMiddleware.API(auth.RoleAdmin))
				r.Get("/access-events", handlers.ListAccessEventsHandler(deps))
			})

			r.NotFound(func(w http.ResponseWriter, r *http.Request) {
				_ = utils.WriteNotFound(w, "endpoint not found")
			})
		})

		// Build assets load on public pages too
		static := handlers.StaticHandler(deps.Config.Policy.FrontendDir)
		r.Method(http.MethodGet, "/assets/*", static)
		r.Method(http.MethodHead, "/assets/*", static)

		// Page navigations: the guard runs before the SPA is served
		pages := deps.GuardMiddleware.Pages(auth.RoleNone)(handlers.SPAHandler(deps.Config.Policy.FrontendDir))
		r.Method(http.MethodGet, "/*", pages)
		r.Method(http.MethodHead, "/*", pages)
	})

	return r
}
