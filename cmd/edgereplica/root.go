package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hyperengineering/edgereplica/internal/alert"
	"github.com/hyperengineering/edgereplica/internal/api"
	"github.com/hyperengineering/edgereplica/internal/cache"
	"github.com/hyperengineering/edgereplica/internal/config"
	"github.com/hyperengineering/edgereplica/internal/snapshot"
	"github.com/hyperengineering/edgereplica/internal/store"
	"github.com/hyperengineering/edgereplica/internal/worker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "edgereplica",
	Short:        "Edgereplica - edge read replica for restaurant search",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// replicaStore is what the serving process needs from the replica.
type replicaStore interface {
	store.Store
	worker.SnapshotStore
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	logger := newLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	// 4. Initialize store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		db.Close()
		return fmt.Errorf("listen: %w", err)
	}

	return serve(ctx, cfg, db, ln)
}

// serve wires the replica into the HTTP server and workers, serves on ln
// until ctx is done, then shuts down. The server stops first, then workers
// and pending alerts drain, and db is closed last.
func serve(ctx context.Context, cfg *config.Config, db replicaStore, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 5. Initialize alert sink
	notifier := alert.New(cfg.Alert.WebhookURL, time.Duration(cfg.Alert.Timeout), slog.Default())
	slog.Info("alerts initialized", "enabled", cfg.Alert.WebhookURL != "")

	// 6. Initialize search cache (optional)
	var searchCache cache.Cache = cache.Noop{}
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cache.Config{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			// Searches still work without the cache.
			slog.Warn("search cache unavailable", "addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			searchCache = rc
			slog.Info("search cache initialized", "addr", cfg.Cache.RedisAddr)
		}
	}

	// 7. Initialize HTTP router
	handler := api.NewHandler(db, notifier, api.Options{
		ServiceKey:    cfg.Auth.ServiceKey,
		Version:       Version,
		Cache:         searchCache,
		CacheTTL:      time.Duration(cfg.Search.CacheTTL),
		DefaultRadius: cfg.Search.DefaultRadius,
		MaxResults:    cfg.Search.MaxResults,
	})
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	// 8. Configure HTTP server
	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 9. Workers
	var wg sync.WaitGroup
	statsWorker := worker.NewReplicaStatsWorker(db, time.Duration(cfg.Worker.StatsInterval))
	startWorker(ctx, &wg, "replica-stats", statsWorker.Run)

	if interval := time.Duration(cfg.Snapshot.Interval); interval > 0 {
		uploader, err := snapshot.NewUploader(cfg.Snapshot)
		if err != nil {
			cancel()
			wg.Wait()
			db.Close()
			return err
		}
		snapshotWorker := worker.NewReplicaSnapshotWorker(db, uploader, cfg.Snapshot.Dir, interval)
		startWorker(ctx, &wg, "replica-snapshot", snapshotWorker.Run)
	}

	// 10. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", ln.Addr().String())
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel() // Trigger shutdown on server failure
		}
	}()

	// 11. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 12. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// 12a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("server stopped")

	// 12b. Wait for workers and pending alert deliveries
	wg.Wait()
	notifier.Wait()

	// 12c. Close cache and store
	if err := searchCache.Close(); err != nil {
		slog.Error("cache close error", "error", err)
	}
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// newLogger builds the process logger. Format "text" selects the
// human-readable handler; anything else logs JSON.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
