package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperengineering/edgereplica/internal/config"
	"github.com/hyperengineering/edgereplica/internal/store"
)

// logCapture captures slog output for testing
type logCapture struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (c *logCapture) handler() slog.Handler {
	return slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func (c *logCapture) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err == nil {
		c.entries = append(c.entries, entry)
	}
	return len(p), nil
}

func (c *logCapture) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var msgs []string
	for _, e := range c.entries {
		if msg, ok := e["msg"].(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func (c *logCapture) hasMessage(msg string) bool {
	for _, m := range c.messages() {
		if m == msg {
			return true
		}
	}
	return false
}

// TestStartWorker_LaunchesGoroutineAndTracksCompletion tests the startWorker helper
func TestStartWorker_LaunchesGoroutineAndTracksCompletion(t *testing.T) {
	capture := &logCapture{}
	oldDefault := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	defer slog.SetDefault(oldDefault)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	workerRan := atomic.Bool{}
	startWorker(ctx, &wg, "test-worker", func(ctx context.Context) {
		workerRan.Store(true)
		<-ctx.Done()
	})

	// Give worker time to start
	time.Sleep(10 * time.Millisecond)

	if !workerRan.Load() {
		t.Error("worker function was not called")
	}

	// Cancel and wait for worker to complete
	cancel()
	wg.Wait()

	// Verify logging
	if !capture.hasMessage("worker started") {
		t.Error("expected 'worker started' log message")
	}
	if !capture.hasMessage("worker stopped") {
		t.Error("expected 'worker stopped' log message")
	}
}

// TestStartWorker_RespectsContextCancellation verifies workers stop when context is cancelled
func TestStartWorker_RespectsContextCancellation(t *testing.T) {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	startWorker(ctx, &wg, "cancel-test", func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})

	cancel()

	select {
	case <-done:
		// Worker responded to cancellation
	case <-time.After(100 * time.Millisecond):
		t.Error("worker did not respond to context cancellation")
	}

	wg.Wait()
}

// TestWorkerWaitGroupIntegration verifies workers are waited on during shutdown
func TestWorkerWaitGroupIntegration(t *testing.T) {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	workerCompleted := atomic.Bool{}
	startWorker(ctx, &wg, "slow-worker", func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond) // Simulate cleanup work
		workerCompleted.Store(true)
	})

	// Cancel and wait
	cancel()
	wg.Wait()

	if !workerCompleted.Load() {
		t.Error("wg.Wait() returned before worker completed")
	}
}

// closeRecordingStore notes which log messages were written before the
// replica was closed.
type closeRecordingStore struct {
	*store.SQLiteStore
	capture     *logCapture
	closes      atomic.Int32
	closedAfter []string
}

func (s *closeRecordingStore) Close() error {
	s.closes.Add(1)
	s.closedAfter = s.capture.messages()
	return s.SQLiteStore.Close()
}

// assertInOrder fails unless want appears in msgs as a subsequence.
func assertInOrder(t *testing.T, msgs []string, want ...string) {
	t.Helper()
	i := 0
	for _, m := range msgs {
		if i < len(want) && m == want[i] {
			i++
		}
	}
	if i < len(want) {
		t.Errorf("log order missing %q after %v; got %v", want[i], want[:i], msgs)
	}
}

func TestServe_StartupAndShutdownOrder(t *testing.T) {
	capture := &logCapture{}
	oldDefault := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	defer slog.SetDefault(oldDefault)

	// Given a replica and a listener
	inner, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	db := &closeRecordingStore{SQLiteStore: inner, capture: capture}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	cfg := &config.Config{}
	cfg.Auth.ServiceKey = "test-key"
	cfg.Server.ShutdownTimeout = config.Duration(5 * time.Second)
	cfg.Worker.StatsInterval = config.Duration(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, db, ln) }()

	// When the server answers a health check
	healthURL := "http://" + ln.Addr().String() + "/health"
	deadline := time.Now().Add(2 * time.Second)
	var resp *http.Response
	for {
		resp, err = http.Get(healthURL)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server never answered: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	// And the process is asked to stop
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	// Then startup and shutdown ran in wiring order
	assertInOrder(t, capture.messages(),
		"alerts initialized",
		"router initialized",
		"server starting",
		"shutdown initiated",
		"server stopped",
		"shutdown complete",
	)

	// And the replica was closed once, after the server and workers stopped
	if n := db.closes.Load(); n != 1 {
		t.Fatalf("store closed %d times, want 1", n)
	}
	assertInOrder(t, db.closedAfter, "shutdown initiated", "server stopped")
	// Workers see the same cancellation, so they may log before shutdown does
	assertInOrder(t, db.closedAfter, "worker stopped")
	for _, m := range db.closedAfter {
		if m == "shutdown complete" {
			t.Error("store closed after shutdown completed")
		}
	}
}

// TestStartWorker_LogsWorkerName verifies worker name is included in log attributes
func TestStartWorker_LogsWorkerName(t *testing.T) {
	capture := &logCapture{}
	oldDefault := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	defer slog.SetDefault(oldDefault)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	startWorker(ctx, &wg, "my-custom-worker", func(ctx context.Context) {
		<-ctx.Done()
	})

	time.Sleep(10 * time.Millisecond)
	cancel()
	wg.Wait()

	// Check that worker name is in log entries
	capture.mu.Lock()
	defer capture.mu.Unlock()

	foundWorkerName := false
	for _, entry := range capture.entries {
		if worker, ok := entry["worker"].(string); ok && worker == "my-custom-worker" {
			foundWorkerName = true
			break
		}
	}

	if !foundWorkerName {
		t.Error("expected log entry with worker='my-custom-worker' attribute")
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "text"}).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, config.LogConfig{Level: "info", Format: "json"}).Info("hello")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json output %q: %v", buf.String(), err)
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "warn"})
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Error("info logged at warn level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn not logged")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
