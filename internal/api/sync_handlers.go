package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/edgereplica/internal/alert"
	"github.com/hyperengineering/edgereplica/internal/cdc"
	"github.com/hyperengineering/edgereplica/internal/metrics"
	"github.com/hyperengineering/edgereplica/internal/translator"
)

// SyncResponse is the body of a successful sync.
type SyncResponse struct {
	Success bool   `json:"success"`
	Table   string `json:"table"`
	Type    string `json:"type"`
}

// SyncWebhook handles POST /webhooks/sync.
//
// Status codes tell the change feed whether to redeliver: 4xx responses are
// permanent and never alert, 500 means retry and always alerts.
func (h *Handler) SyncWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	// 1. Parse envelope
	ev, err := cdc.Decode(r.Body)
	if err != nil {
		metrics.SyncEventsTotal.WithLabelValues("", "", metrics.StatusRejected).Inc()
		WriteError(w, r, http.StatusBadRequest, "Invalid change event", err.Error())
		return
	}
	eventType := string(ev.Type)

	// 2. Resolve translator
	translate, ok := translator.Lookup(ev.Table)
	if !ok {
		slog.Warn("sync for unconfigured table",
			"component", "api",
			"action", "sync_rejected",
			"table", ev.Table,
			"type", eventType,
		)
		metrics.SyncEventsTotal.WithLabelValues(ev.Table, eventType, metrics.StatusRejected).Inc()
		WriteError(w, r, http.StatusBadRequest, "Table not configured for sync", ev.Table)
		return
	}

	// 3. Translate and apply
	stmt, err := translate(ev, h.now())
	var affected int64
	if err == nil {
		affected, err = h.store.Apply(ctx, stmt)
	}
	if err != nil {
		h.syncFailed(r, ev, err)
		WriteError(w, r, http.StatusInternalServerError, "Sync failed", err.Error())
		return
	}

	metrics.SyncEventsTotal.WithLabelValues(ev.Table, eventType, metrics.StatusSuccess).Inc()
	slog.Info("sync applied",
		"component", "api",
		"action", "sync",
		"table", ev.Table,
		"type", eventType,
		"rows_affected", affected,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, SyncResponse{
		Success: true,
		Table:   ev.Table,
		Type:    eventType,
	})
}

// syncFailed logs, counts and alerts on a sync failure.
func (h *Handler) syncFailed(r *http.Request, ev cdc.Event, err error) {
	eventType := string(ev.Type)
	slog.Error("sync failed",
		"component", "api",
		"action", "sync_failed",
		"table", ev.Table,
		"type", eventType,
		"record_invalid", errors.Is(err, cdc.ErrInvalidRecord),
		"error", err,
	)
	metrics.SyncEventsTotal.WithLabelValues(ev.Table, eventType, metrics.StatusFailed).Inc()

	h.notifier.Notify(r.Context(), alert.Alert{
		Severity: alert.SeverityError,
		Title:    "Replica sync failed",
		Message:  err.Error(),
		Fields: map[string]string{
			"table": ev.Table,
			"type":  eventType,
		},
	})
}
