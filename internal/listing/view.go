package listing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/metrics"
	"github.com/vmunix/phimgo/internal/query"
)

// Change is a new search term and filter selection for a view.
type Change struct {
	Term    string              `json:"q"`
	Filters catalog.FilterState `json:"filters"`
}

// View is a mounted listing: a term and filter selection with its own
// pagination cache and request dispatcher.
type View struct {
	id         string
	lister     *Lister
	cache      *PageCache
	dispatcher Dispatcher
	pageSize   int
	logger     *slog.Logger

	mu       sync.Mutex
	change   Change
	lastUsed time.Time
}

func newView(id string, lister *Lister, pageSize int, logger *slog.Logger) *View {
	return &View{
		id:       id,
		lister:   lister,
		cache:    NewPageCache(),
		pageSize: pageSize,
		logger:   logger.With("view", id),
		lastUsed: time.Now(),
	}
}

// ID returns the view's identifier.
func (v *View) ID() string { return v.id }

// PageSize returns the fixed page size of the view.
func (v *View) PageSize() int { return v.pageSize }

// Cache exposes the pagination cache.
func (v *View) Cache() *PageCache { return v.cache }

// State returns the current term and filters.
func (v *View) State() Change {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.change
}

// Current returns the result of the latest request.
func (v *View) Current() *PageResult {
	r, _ := v.dispatcher.Current()
	return r
}

func (v *View) touch() {
	v.mu.Lock()
	v.lastUsed = time.Now()
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// Invalidate clears the pagination cache.
func (v *View) Invalidate(reason string) {
	v.mu.Lock()
	v.cache.Invalidate()
	v.mu.Unlock()
	v.invalidated(reason)
}

func (v *View) invalidated(reason string) {
	metrics.RecordInvalidation(reason)
	v.logger.Debug("pagination cache invalidated", "reason", reason)
}

// snapshot returns the selection and the cache generation it belongs to.
// Apply changes both under v.mu, so a fetch never pairs old filters with a
// new generation.
func (v *View) snapshot() (Change, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.change, v.cache.Generation()
}

// Apply replaces the term and filters, clears the cache and fetches page 1.
func (v *View) Apply(ctx context.Context, change Change) (*PageResult, error) {
	seq := v.dispatcher.Issue()
	change.Filters = change.Filters.Normalize()

	v.mu.Lock()
	v.change = change
	v.lastUsed = time.Now()
	v.cache.Invalidate()
	v.mu.Unlock()

	v.invalidated("filters")
	return v.fetch(ctx, seq, 1)
}

// Page fetches page n. When the cursor for page n-1 is not cached the view
// walks forward from the nearest cached page, recording each cursor. Past the
// last page the result is empty with the correct totals.
func (v *View) Page(ctx context.Context, n int) (*PageResult, error) {
	seq := v.dispatcher.Issue()
	v.touch()
	return v.fetch(ctx, seq, n)
}

func (v *View) fetch(ctx context.Context, seq uint64, n int) (*PageResult, error) {
	state, gen := v.snapshot()
	q := query.SearchQuery{Term: state.Term, Filters: state.Filters, Page: n, PageSize: v.pageSize}

	result, err := v.fetchPage(ctx, q, gen)
	if err != nil {
		return nil, err
	}
	if !v.dispatcher.Deliver(seq, result) {
		v.logger.Debug("discarded stale response", "seq", seq, "page", n)
	}
	return result, nil
}

func (v *View) fetchPage(ctx context.Context, q query.SearchQuery, gen uint64) (*PageResult, error) {
	n := q.Page
	if n < 1 {
		// let the compiler reject it
		return v.lister.Fetch(ctx, q)
	}

	// cursors from another generation belong to other filters
	from, cursor := v.cache.NearestIf(gen, n-1)
	for p := from + 1; p < n; p++ {
		fill := q
		fill.Page = p
		fill.Cursor = cursor
		res, err := v.lister.Fetch(ctx, fill)
		if err != nil {
			return nil, err
		}
		if res.NextCursor == nil {
			return emptyPage(n, res.TotalCount, res.TotalPages), nil
		}
		v.cache.RecordIf(gen, p, res.NextCursor)
		cursor = res.NextCursor
	}
	q.Cursor = cursor

	res, err := v.lister.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	if res.NextCursor != nil {
		v.cache.RecordIf(gen, n, res.NextCursor)
	}
	return res, nil
}
