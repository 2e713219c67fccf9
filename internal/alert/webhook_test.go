package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeverity_Icon(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityError, "🚨"},
		{SeverityWarn, "⚠️"},
		{SeverityInfo, "ℹ️"},
		{Severity("other"), "ℹ️"},
	}
	for _, tt := range tests {
		if got := tt.severity.Icon(); got != tt.want {
			t.Errorf("%s.Icon() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestAlert_Text(t *testing.T) {
	a := Alert{
		Severity: SeverityError,
		Title:    "Sync failed",
		Message:  "disk full",
		Fields:   map[string]string{"type": "INSERT", "table": "restaurants"},
	}

	want := "🚨 *Sync failed*\ndisk full\n• table: restaurants\n• type: INSERT"
	if got := a.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestWebhook_PostsText(t *testing.T) {
	var (
		mu   sync.Mutex
		body map[string]string
		ct   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		ct = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, time.Second, discardLogger())
	w.Notify(context.Background(), Alert{Severity: SeverityWarn, Title: "Heads up"})
	w.Wait()

	mu.Lock()
	defer mu.Unlock()
	if ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(body["text"], "⚠️ *Heads up*") {
		t.Errorf("text = %q", body["text"])
	}
}

func TestWebhook_SurvivesCanceledContext(t *testing.T) {
	called := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called <- struct{}{}
	}))
	defer srv.Close()

	// Given a request context that is already canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When an alert is sent from it
	w := NewWebhook(srv.URL, time.Second, discardLogger())
	w.Notify(ctx, Alert{Severity: SeverityError, Title: "late"})
	w.Wait()

	// Then the delivery still happens
	select {
	case <-called:
	default:
		t.Error("webhook was not called")
	}
}

func TestWebhook_FailuresAreSwallowed(t *testing.T) {
	tests := []struct {
		name string
		url  func() string
	}{
		{
			name: "server error",
			url: func() string {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				}))
				t.Cleanup(srv.Close)
				return srv.URL
			},
		},
		{
			name: "unreachable",
			url: func() string {
				srv := httptest.NewServer(http.NotFoundHandler())
				url := srv.URL
				srv.Close()
				return url
			},
		},
		{
			name: "invalid url",
			url:  func() string { return "://not a url" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWebhook(tt.url(), 500*time.Millisecond, discardLogger())
			w.Notify(context.Background(), Alert{Severity: SeverityError, Title: "x"})
			w.Wait()
		})
	}
}

func TestWebhook_TimeoutBoundsDelivery(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	w := NewWebhook(srv.URL, 50*time.Millisecond, discardLogger())

	start := time.Now()
	w.Notify(context.Background(), Alert{Severity: SeverityError, Title: "slow"})
	w.Wait()

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("delivery took %v, want bounded by timeout", elapsed)
	}
}

func TestNew_EmptyURLIsNoop(t *testing.T) {
	n := New("", time.Second, nil)
	if _, ok := n.(Noop); !ok {
		t.Fatalf("New(\"\") = %T, want Noop", n)
	}
	n.Notify(context.Background(), Alert{})
	n.Wait()

	if _, ok := New("http://example.invalid", time.Second, nil).(*Webhook); !ok {
		t.Error("New(url) did not return *Webhook")
	}
}
