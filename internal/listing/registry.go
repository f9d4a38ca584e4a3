package listing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/phimgo/internal/events"
	"github.com/vmunix/phimgo/internal/metrics"
	"github.com/vmunix/phimgo/internal/query"
)

// Registry defaults.
const (
	DefaultIdleTTL  = 30 * time.Minute
	DefaultMaxViews = 1000
	DefaultPageSize = 20
)

// Registry holds mounted views by ID.
type Registry struct {
	lister *Lister
	logger *slog.Logger

	idleTTL         time.Duration
	maxViews        int
	defaultPageSize int

	mu    sync.RWMutex
	views map[string]*View
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTTL sets how long an unused view stays mounted.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

// WithMaxViews bounds the number of mounted views. Mounting past the bound
// unmounts the least recently used view.
func WithMaxViews(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxViews = n
		}
	}
}

// WithDefaultPageSize sets the page size for views mounted without one.
func WithDefaultPageSize(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.defaultPageSize = n
		}
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry whose views fetch through lister.
func NewRegistry(lister *Lister, opts ...RegistryOption) *Registry {
	r := &Registry{
		lister:          lister,
		logger:          slog.Default(),
		idleTTL:         DefaultIdleTTL,
		maxViews:        DefaultMaxViews,
		defaultPageSize: DefaultPageSize,
		views:           make(map[string]*View),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "views")
	return r
}

// Mount creates a view and fetches its first page.
func (r *Registry) Mount(ctx context.Context, change Change, pageSize int) (*View, *PageResult, error) {
	if pageSize <= 0 {
		pageSize = r.defaultPageSize
	}
	pageSize = min(pageSize, query.MaxPageSize)

	v := newView(uuid.NewString(), r.lister, pageSize, r.logger)
	result, err := v.Apply(ctx, change)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	if len(r.views) >= r.maxViews {
		r.evictOldestLocked()
	}
	r.views[v.id] = v
	metrics.ActiveViews.Set(float64(len(r.views)))
	r.mu.Unlock()

	r.logger.Debug("view mounted", "id", v.id, "page_size", pageSize)
	return v, result, nil
}

func (r *Registry) evictOldestLocked() {
	var (
		oldest   *View
		oldestAt time.Time
	)
	for _, v := range r.views {
		if at := v.idleSince(); oldest == nil || at.Before(oldestAt) {
			oldest, oldestAt = v, at
		}
	}
	if oldest != nil {
		delete(r.views, oldest.id)
		r.logger.Info("view evicted", "id", oldest.id, "idle_since", oldestAt)
	}
}

// Get returns a mounted view.
func (r *Registry) Get(id string) (*View, error) {
	r.mu.RLock()
	v, ok := r.views[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("view %s: %w", id, ErrViewNotFound)
	}
	v.touch()
	return v, nil
}

// Unmount removes a view.
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.views[id]; !ok {
		return fmt.Errorf("view %s: %w", id, ErrViewNotFound)
	}
	delete(r.views, id)
	metrics.ActiveViews.Set(float64(len(r.views)))
	return nil
}

// Len returns the number of mounted views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// DefaultPageSize is the page size used when a request names none.
func (r *Registry) DefaultPageSize() int {
	return r.defaultPageSize
}

// Sweep unmounts views idle for longer than the idle TTL and returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, v := range r.views {
		if now.Sub(v.idleSince()) > r.idleTTL {
			delete(r.views, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.ActiveViews.Set(float64(len(r.views)))
		r.logger.Info("idle views swept", "count", removed)
	}
	return removed
}

// InvalidateAll clears every view's pagination cache.
func (r *Registry) InvalidateAll(reason string) {
	r.mu.RLock()
	views := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		views = append(views, v)
	}
	r.mu.RUnlock()

	for _, v := range views {
		v.Invalidate(reason)
	}
}

// Run invalidates every view on movie events and sweeps idle views until ctx
// is done or the bus closes.
func (r *Registry) Run(ctx context.Context, bus *events.Bus) error {
	ch := bus.SubscribePrefix(events.MoviePrefix, 100)

	sweep := time.NewTicker(max(r.idleTTL/2, time.Second))
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			r.InvalidateAll(e.EventType())
		case now := <-sweep.C:
			r.Sweep(now)
		}
	}
}
