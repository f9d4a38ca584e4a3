package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/phimgo/internal/api/v1"
	"github.com/vmunix/phimgo/internal/config"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
	"github.com/vmunix/phimgo/internal/handlers"
	"github.com/vmunix/phimgo/internal/library"
	"github.com/vmunix/phimgo/internal/listing"
	"github.com/vmunix/phimgo/internal/migrations"
	"github.com/vmunix/phimgo/internal/ophim"
	"github.com/vmunix/phimgo/internal/server"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// newLogger builds the handler named by format: text, json or pretty.
func newLogger(w io.Writer, format, level string) *slog.Logger {
	lvl := parseLogLevel(level)
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	case "pretty":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// backend is an opened document store. db is set for the sqlite backend only.
type backend struct {
	store docstore.Store
	db    *sql.DB
	close func() error
}

func openBackend(cfg config.StoreConfig) (*backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &backend{store: docstore.NewMemory(), close: func() error { return nil }}, nil

	case config.BackendBolt:
		b, err := docstore.OpenBolt(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &backend{store: b, close: b.Close}, nil

	case config.BackendSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err := sql.Open("sqlite", cfg.Path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		if err := migrations.Apply(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &backend{store: docstore.NewSQLite(db), db: db, close: db.Close}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.Discover()
}

func runServer(configPath string) error {
	// Load config
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := newLogger(os.Stdout, cfg.Server.LogFormat, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// Open store
	be, err := openBackend(cfg.Store)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() { _ = be.close() }()

	// Event log is only persisted alongside the sqlite backend
	var eventLog *events.EventLog
	if be.db != nil {
		eventLog = events.NewEventLog(be.db)
	}
	bus := events.NewBus(eventLog, logger)
	defer func() { _ = bus.Close() }()

	// === Services ===
	lib := library.New(be.store, bus, logger)
	lister := listing.NewLister(be.store,
		listing.WithLogger(logger),
		listing.WithRetryAttempts(cfg.Listing.RetryAttempts),
		listing.WithMaxPageSize(cfg.Listing.MaxPageSize),
	)
	views := listing.NewRegistry(lister,
		listing.WithIdleTTL(cfg.Views.IdleTTL),
		listing.WithMaxViews(cfg.Views.MaxViews),
		listing.WithDefaultPageSize(cfg.Listing.DefaultPageSize),
		listing.WithRegistryLogger(logger),
	)

	var source *ophim.Client
	if cfg.Source.URL != "" {
		source = ophim.NewClient(
			ophim.WithBaseURL(cfg.Source.URL),
			ophim.WithCacheTTL(cfg.Source.CacheTTL),
			ophim.WithRateLimit(cfg.Source.RatePerSecond),
		)
	}

	// === HTTP Setup ===
	deps := v1.ServerDeps{
		Store:    be.store,
		Library:  lib,
		Lister:   lister,
		Views:    views,
		EventLog: eventLog,
		Logger:   logger.With("component", "api"),
		Version:  version,
	}
	if source != nil {
		deps.Source = source
	}
	apiV1, err := v1.New(deps)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	mux := http.NewServeMux()
	apiV1.RegisterRoutes(mux)

	// === Background Jobs ===
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runnerDeps := server.Deps{
		Bus:      bus,
		Views:    views,
		Stats:    lib.Stats,
		EventLog: eventLog,
		Handlers: []handlers.Handler{
			handlers.NewCleanupHandler(bus, lib, logger),
			handlers.NewSnapshotHandler(bus, lib, logger),
		},
	}
	if source != nil {
		runnerDeps.Source = source
	}
	runner := server.NewRunner(runnerDeps, server.Config{
		StatsSchedule:  cfg.Stats.Schedule,
		EventRetention: cfg.Events.Retention,
	}, logger)

	runnerErr := make(chan error, 1)
	go func() { runnerErr <- runner.Run(ctx) }()

	// Start server
	addr := cfg.Server.Addr()
	logger.Info("server starting",
		"addr", addr,
		"config", path,
		"backend", cfg.Store.Backend,
		"source", cfg.Source.URL,
		"log_level", cfg.Server.LogLevel,
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           logRequests(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt signal or a failed component
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-runnerErr:
		if err != nil {
			logger.Error("runner stopped", "error", err)
		}
	case <-ctx.Done():
	}

	cancel()

	// Graceful HTTP shutdown with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
