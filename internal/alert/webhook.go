package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hyperengineering/edgereplica/internal/metrics"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 5 * time.Second

// Webhook posts alerts as {"text": ...} to an incoming-webhook URL.
type Webhook struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

var _ Notifier = (*Webhook)(nil)

// NewWebhook creates a webhook notifier.
func NewWebhook(url string, timeout time.Duration, logger *slog.Logger) *Webhook {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// New returns a Webhook for url, or Noop when url is empty.
func New(url string, timeout time.Duration, logger *slog.Logger) Notifier {
	if url == "" {
		return Noop{}
	}
	return NewWebhook(url, timeout, logger)
}

// Notify delivers a in the background. The request outlives ctx's
// cancellation but not the notifier timeout.
func (w *Webhook) Notify(ctx context.Context, a Alert) {
	ctx = context.WithoutCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				w.logger.Warn("alert delivery panicked",
					"component", "alert",
					"severity", string(a.Severity),
					"panic", fmt.Sprint(r),
				)
				metrics.AlertsTotal.WithLabelValues(string(a.Severity), metrics.StatusFailed).Inc()
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()

		start := time.Now()
		if err := w.send(ctx, a); err != nil {
			w.logger.Warn("alert delivery failed",
				"component", "alert",
				"severity", string(a.Severity),
				"title", a.Title,
				"error", err,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			metrics.AlertsTotal.WithLabelValues(string(a.Severity), metrics.StatusFailed).Inc()
			return
		}
		metrics.AlertsTotal.WithLabelValues(string(a.Severity), metrics.StatusSuccess).Inc()
	}()
}

// Wait blocks until in-flight deliveries finish.
func (w *Webhook) Wait() {
	w.wg.Wait()
}

func (w *Webhook) send(ctx context.Context, a Alert) error {
	body, err := json.Marshal(map[string]string{"text": a.Text()})
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post alert: unexpected status %d", resp.StatusCode)
	}
	return nil
}
