// Package listing serves paginated movie listings: single-page fetches,
// stateful views with a pagination cache, and the registry that keeps views
// consistent with catalog changes.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/library"
	"github.com/vmunix/phimgo/internal/metrics"
	"github.com/vmunix/phimgo/internal/query"
)

// DefaultRetryAttempts bounds attempts per store read, the first included.
const DefaultRetryAttempts = 3

// PageResult is one page of a listing.
type PageResult struct {
	Items      []*catalog.Movie `json:"items"`
	NextCursor *docstore.Cursor `json:"next_cursor"`
	TotalCount int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	Page       int              `json:"page"`
}

// emptyPage is the terminal result past the last page.
func emptyPage(page, total, pages int) *PageResult {
	return &PageResult{Items: []*catalog.Movie{}, TotalCount: total, TotalPages: pages, Page: page}
}

// Lister fetches one page of movies and the total match count.
type Lister struct {
	store       docstore.Store
	logger      *slog.Logger
	attempts    uint
	maxPageSize int
	newBackOff  func() backoff.BackOff
}

// Option configures a Lister.
type Option func(*Lister)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lister) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRetryAttempts sets the attempts per store read. Values below 1 mean one attempt.
func WithRetryAttempts(n int) Option {
	return func(l *Lister) {
		l.attempts = uint(max(n, 1))
	}
}

// WithMaxPageSize caps page sizes below query.MaxPageSize.
func WithMaxPageSize(n int) Option {
	return func(l *Lister) {
		if n > 0 {
			l.maxPageSize = min(n, query.MaxPageSize)
		}
	}
}

// WithBackOff replaces the retry schedule.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(l *Lister) {
		l.newBackOff = fn
	}
}

// NewLister creates a Lister over the movies collection of store.
func NewLister(store docstore.Store, opts ...Option) *Lister {
	l := &Lister{
		store:       store,
		logger:      slog.Default(),
		attempts:    DefaultRetryAttempts,
		maxPageSize: query.MaxPageSize,
		newBackOff: func() backoff.BackOff {
			return &backoff.ExponentialBackOff{
				InitialInterval:     50 * time.Millisecond,
				RandomizationFactor: 0.5,
				Multiplier:          2,
				MaxInterval:         time.Second,
			}
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "lister")
	return l
}

// Fetch compiles q and runs the page read and the count read in parallel.
// NextCursor is nil when the page came back short.
func (l *Lister) Fetch(ctx context.Context, q query.SearchQuery) (*PageResult, error) {
	q.PageSize = min(q.PageSize, l.maxPageSize)
	plan, err := query.Compile(q)
	if err != nil {
		return nil, err
	}
	pageConstraints := plan.PageConstraints(q.Cursor, plan.PageSize)

	var (
		docs  []docstore.Document
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = retry(gctx, l, "query", func(ctx context.Context) ([]docstore.Document, error) {
			return l.store.Query(ctx, catalog.CollectionMovies, pageConstraints)
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = retry(gctx, l, "count", func(ctx context.Context) (int, error) {
			return l.store.Count(ctx, catalog.CollectionMovies, plan.CountConstraints())
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items, err := library.DecodeMovies(docs)
	if err != nil {
		return nil, err
	}
	result := &PageResult{
		Items:      items,
		TotalCount: total,
		TotalPages: (total + plan.PageSize - 1) / plan.PageSize,
		Page:       q.Page,
	}
	if len(docs) == plan.PageSize {
		result.NextCursor = docstore.CursorAt(docs[len(docs)-1], pageConstraints)
	}
	return result, nil
}

// retry runs op, retrying ErrUnavailable with backoff. Everything else,
// QueryError included, fails on the first attempt.
func retry[T any](ctx context.Context, l *Lister, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := backoff.Retry(ctx, func() (T, error) {
		v, err := fn(ctx)
		if err != nil && !errors.Is(err, docstore.ErrUnavailable) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(l.newBackOff()),
		backoff.WithMaxTries(l.attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.StoreRetriesTotal.Inc()
			l.logger.Warn("store unavailable, retrying", "op", op, "retry_in", next, "error", err)
		}),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}

	status := "ok"
	switch {
	case err == nil:
	case docstore.IsQueryError(err):
		status = "invalid"
	case errors.Is(err, docstore.ErrUnavailable):
		status = "unavailable"
	default:
		status = "error"
	}
	metrics.RecordStoreOp(op, status, time.Since(start).Seconds())
	return v, err
}
