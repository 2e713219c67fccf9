package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes). CORS runs before routing so preflight
	// requests to any path are answered.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "Not found", r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed", r.Method+" "+r.URL.Path)
	})

	// Public routes
	r.Get("/", h.Info)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/restaurants/search", h.SearchRestaurants)
		r.Post("/disclaimer", h.AcceptDisclaimer)
		r.Get("/metrics", h.Metrics)
	})

	// Change feed (service key required)
	r.With(ServiceKeyMiddleware(h.serviceKey)).Post("/webhooks/sync", h.SyncWebhook)

	return r
}
