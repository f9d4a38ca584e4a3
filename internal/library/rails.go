package library

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/query"
)

// Thresholds for the top-new rail.
const (
	TopNewMinRating = 7.0
	TopNewMinViews  = 500
)

// Rails serves the fixed home page movie lists.
type Rails struct {
	store   docstore.Store
	watched *ListService
	now     func() time.Time
}

// NewRails creates the rail queries. watched backs Suggestions and may be nil.
func NewRails(store docstore.Store, watched *ListService) *Rails {
	return &Rails{store: store, watched: watched, now: time.Now}
}

func (r *Rails) movies(ctx context.Context, rail string, cs []docstore.Constraint) ([]*catalog.Movie, error) {
	docs, err := r.store.Query(ctx, catalog.CollectionMovies, cs)
	if err != nil {
		return nil, fmt.Errorf("rail %s: %w", rail, err)
	}
	return DecodeMovies(docs)
}

// TopNew returns this year's well-rated movies with at least TopNewMinViews
// views, most viewed first. Falls back to last year when this year has
// fewer than limit.
func (r *Rails) TopNew(ctx context.Context, limit int) ([]*catalog.Movie, error) {
	year := r.now().Year()
	movies, err := r.topNewForYear(ctx, year, limit)
	if err != nil || len(movies) >= limit {
		return movies, err
	}
	return r.topNewForYear(ctx, year-1, limit)
}

func (r *Rails) topNewForYear(ctx context.Context, year, limit int) ([]*catalog.Movie, error) {
	// one inequality per query: rating is filtered here
	all, err := r.movies(ctx, "top-new", []docstore.Constraint{
		docstore.Eq(catalog.FieldYear, year),
		docstore.Gte(catalog.FieldView, TopNewMinViews),
		docstore.OrderBy(catalog.FieldView, docstore.Desc),
	})
	if err != nil {
		return nil, err
	}
	all = slices.DeleteFunc(all, func(m *catalog.Movie) bool { return m.Rating < TopNewMinRating })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// TopViewed returns the most viewed movies.
func (r *Rails) TopViewed(ctx context.Context, limit int) ([]*catalog.Movie, error) {
	return r.movies(ctx, "top-view", []docstore.Constraint{
		docstore.OrderBy(catalog.FieldView, docstore.Desc),
		docstore.Limit(limit),
	})
}

// Trending orders by views, then by newest.
func (r *Rails) Trending(ctx context.Context, limit int) ([]*catalog.Movie, error) {
	return r.movies(ctx, "trending", []docstore.Constraint{
		docstore.OrderBy(catalog.FieldView, docstore.Desc),
		docstore.OrderBy(catalog.FieldCreatedAt, docstore.Desc),
		docstore.Limit(limit),
	})
}

// NewByType returns the newest movies of one type.
func (r *Rails) NewByType(ctx context.Context, t catalog.MovieType, limit int) ([]*catalog.Movie, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown movie type %q", ErrInvalid, t)
	}
	return r.movies(ctx, "new-"+string(t), []docstore.Constraint{
		docstore.Eq(catalog.FieldType, string(t)),
		docstore.OrderBy(catalog.FieldCreatedAt, docstore.Desc),
		docstore.Limit(limit),
	})
}

// ByCountry returns the newest movies from one country.
func (r *Rails) ByCountry(ctx context.Context, slug string, limit int) ([]*catalog.Movie, error) {
	return r.movies(ctx, "country/"+slug, []docstore.Constraint{
		docstore.ArrayContains(catalog.FieldCountrySlugs, slug),
		docstore.OrderBy(catalog.FieldCreatedAt, docstore.Desc),
		docstore.Limit(limit),
	})
}

// Suggestions returns the most viewed movies in the first category of each
// movie userID has watched. Users with no history get an empty list.
func (r *Rails) Suggestions(ctx context.Context, userID string, limit int) ([]*catalog.Movie, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: suggestions require a user", ErrInvalid)
	}
	if r.watched == nil {
		return []*catalog.Movie{}, nil
	}
	entries, err := r.watched.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	var slugs []string
	for _, e := range entries {
		if len(e.Movie.Categories) == 0 {
			continue
		}
		if s := e.Movie.Categories[0].Slug; s != "" && !slices.Contains(slugs, s) {
			slugs = append(slugs, s)
		}
	}
	if len(slugs) == 0 {
		return []*catalog.Movie{}, nil
	}
	if len(slugs) > docstore.MaxDisjunctValues {
		slugs = slugs[:docstore.MaxDisjunctValues]
	}

	plan, err := query.CompileFilters("", catalog.FilterState{Categories: slugs, Sort: catalog.SortView})
	if err != nil {
		return nil, err
	}
	return r.movies(ctx, "suggestions", plan.PageConstraints(nil, limit))
}
