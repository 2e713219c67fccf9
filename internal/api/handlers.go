package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/edgereplica/internal/alert"
	"github.com/hyperengineering/edgereplica/internal/cache"
	"github.com/hyperengineering/edgereplica/internal/search"
	"github.com/hyperengineering/edgereplica/internal/store"
)

// Options configures a Handler. Zero values select defaults.
type Options struct {
	ServiceKey    string
	Version       string
	Cache         cache.Cache
	CacheTTL      time.Duration
	DefaultRadius int
	MaxResults    int
}

// Handler implements the API handlers
type Handler struct {
	store         store.Store
	search        *search.Service
	notifier      alert.Notifier
	cache         cache.Cache
	cacheTTL      time.Duration
	serviceKey    string
	version       string
	defaultRadius int
	startedAt     time.Time
	now           func() time.Time
}

// NewHandler creates a new Handler backed by s. Sync failures are reported
// to n.
func NewHandler(s store.Store, n alert.Notifier, opts Options) *Handler {
	if n == nil {
		n = alert.Noop{}
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.DefaultRadius <= 0 {
		opts.DefaultRadius = search.DefaultRadiusMeters
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		store:         s,
		search:        search.NewService(s, opts.MaxResults),
		notifier:      n,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		serviceKey:    opts.ServiceKey,
		version:       opts.Version,
		defaultRadius: opts.DefaultRadius,
		startedAt:     time.Now(),
		now:           time.Now,
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Health pings the replica.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	if err := h.store.Ping(ctx); err != nil {
		slog.Error("health check failed",
			"component", "api",
			"action", "health",
			"error", err,
		)
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// InfoResponse is the body of GET /.
type InfoResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// Info describes the service.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Service: "edgereplica",
		Version: h.version,
		Endpoints: []string{
			"POST /webhooks/sync",
			"GET /api/restaurants/search",
			"POST /api/disclaimer",
			"GET /api/metrics",
			"GET /health",
			"GET /metrics",
		},
	})
}

// MetricsResponse is the body of GET /api/metrics.
type MetricsResponse struct {
	Replica       *store.Stats `json:"replica"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Timestamp     string       `json:"timestamp"`
}

// Metrics returns replica row counts for operational dashboards.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		slog.Error("metrics query failed",
			"component", "api",
			"action", "metrics",
			"error", err,
		)
		WriteError(w, r, http.StatusInternalServerError, "Failed to load metrics", "")
		return
	}

	now := h.now()
	writeJSON(w, http.StatusOK, MetricsResponse{
		Replica:       stats,
		UptimeSeconds: int64(now.Sub(h.startedAt).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}
