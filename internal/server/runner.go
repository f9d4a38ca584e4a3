// Package server runs the daemon's background components.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/phimgo/internal/events"
	"github.com/vmunix/phimgo/internal/handlers"
	"github.com/vmunix/phimgo/internal/library"
	"github.com/vmunix/phimgo/internal/listing"
	"github.com/vmunix/phimgo/internal/metrics"
)

// housekeepingSchedule runs event pruning and source cache pruning.
const housekeepingSchedule = "@hourly"

// Config for the background components.
type Config struct {
	// StatsSchedule is a standard cron spec for the statistics snapshot.
	StatsSchedule  string
	EventRetention time.Duration
}

// CachePruner drops expired entries from a response cache.
type CachePruner interface {
	PruneCache() int
}

// Deps are the components the runner drives. EventLog and Source may be nil.
type Deps struct {
	Bus      *events.Bus
	Views    *listing.Registry
	Stats    *library.StatsService
	EventLog *events.EventLog
	Source   CachePruner
	Handlers []handlers.Handler
}

// Runner manages the views lifecycle, the event handlers and the scheduled jobs.
type Runner struct {
	deps   Deps
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(deps Deps, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		deps:   deps,
		config: cfg,
		logger: logger.With("component", "runner"),
	}
}

// Run starts all components.
// It blocks until the context is canceled or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	c := cron.New()
	if r.config.StatsSchedule != "" {
		if _, err := c.AddFunc(r.config.StatsSchedule, func() { _ = r.SnapshotStats(ctx) }); err != nil {
			return fmt.Errorf("schedule stats %q: %w", r.config.StatsSchedule, err)
		}
	}
	if _, err := c.AddFunc(housekeepingSchedule, func() { r.Housekeep(ctx) }); err != nil {
		return fmt.Errorf("schedule housekeeping: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.deps.Views.Run(ctx, r.deps.Bus)
	})

	for _, h := range r.deps.Handlers {
		g.Go(func() error {
			r.logger.Info("starting handler", "handler", h.Name())
			if err := h.Start(ctx); err != nil {
				return fmt.Errorf("handler %s: %w", h.Name(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		c.Start()
		r.logger.Info("scheduler started", "stats_schedule", r.config.StatsSchedule)
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	})

	return g.Wait()
}

// SnapshotStats stores a fresh statistics snapshot.
func (r *Runner) SnapshotStats(ctx context.Context) error {
	snap, err := r.deps.Stats.Snapshot(ctx)
	metrics.RecordJob("stats_snapshot", err)
	if err != nil {
		r.logger.Error("stats snapshot failed", "error", err)
		return err
	}
	r.logger.Info("stats snapshot taken", "movies", snap.TotalMovies, "views", snap.TotalViews)
	return nil
}

// Housekeep prunes old events and expired source responses.
func (r *Runner) Housekeep(ctx context.Context) {
	if r.deps.EventLog != nil && r.config.EventRetention > 0 {
		n, err := r.deps.EventLog.Prune(ctx, r.config.EventRetention)
		metrics.RecordJob("event_prune", err)
		if err != nil {
			r.logger.Error("event prune failed", "error", err)
		} else if n > 0 {
			r.logger.Info("events pruned", "count", n)
		}
	}
	if r.deps.Source != nil {
		if n := r.deps.Source.PruneCache(); n > 0 {
			r.logger.Debug("source cache pruned", "count", n)
		}
		metrics.RecordJob("source_cache_prune", nil)
	}
}
