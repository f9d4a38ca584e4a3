package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
)

// MovieService manages the movies collection. Every write goes through
// Movie.Derive so the denormalized filter fields stay in step with the
// categories and countries.
type MovieService struct {
	store      docstore.Store
	categories *TaxonomyService
	bus        *events.Bus
	logger     *slog.Logger
	now        func() time.Time

	viewMu sync.Mutex
}

// NewMovieService creates a movie service. categories and bus may be nil.
func NewMovieService(store docstore.Store, categories *TaxonomyService, bus *events.Bus, logger *slog.Logger) *MovieService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MovieService{
		store:      store,
		categories: categories,
		bus:        bus,
		logger:     logger.With("component", "movies"),
		now:        time.Now,
	}
}

func validateMovie(m *catalog.Movie) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("%w: unknown movie type %q", ErrInvalid, m.Type)
	}
	if m.Lang != "" && !m.Lang.Valid() {
		return fmt.Errorf("%w: unknown language %q", ErrInvalid, m.Lang)
	}
	if m.Year < 0 {
		return fmt.Errorf("%w: year %d", ErrInvalid, m.Year)
	}
	return nil
}

// Add inserts a new movie. Sets ID, CreatedAt, UpdatedAt and the derived fields.
// Returns ErrDuplicate if the slug is taken.
func (s *MovieService) Add(ctx context.Context, m *catalog.Movie) error {
	if m.Slug == "" {
		m.Slug = catalog.Slugify(m.Name)
	}
	if err := validateMovie(m); err != nil {
		return err
	}
	if err := s.checkSlug(ctx, m.Slug, ""); err != nil {
		return err
	}

	now := s.now()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.Derive()

	if err := s.put(ctx, m); err != nil {
		return err
	}
	s.logger.Info("movie added", "id", m.ID, "slug", m.Slug)

	publish(ctx, s.bus, s.logger, &events.MovieAdded{
		BaseEvent: events.NewBaseEvent(events.EventMovieAdded, events.EntityMovie, m.ID),
		Slug:      m.Slug,
		Name:      m.Name,
		Type:      string(m.Type),
		Year:      m.Year,
	})
	return nil
}

// Update replaces a movie's fields, keeping its CreatedAt and view count.
func (s *MovieService) Update(ctx context.Context, m *catalog.Movie) error {
	if err := validateMovie(m); err != nil {
		return err
	}
	existing, err := s.Get(ctx, m.ID)
	if err != nil {
		return err
	}
	if m.Slug == "" {
		m.Slug = existing.Slug
	}
	if m.Slug != existing.Slug {
		if err := s.checkSlug(ctx, m.Slug, m.ID); err != nil {
			return err
		}
	}

	m.CreatedAt = existing.CreatedAt
	m.View = existing.View
	m.UpdatedAt = s.now()
	m.Derive()

	if err := s.put(ctx, m); err != nil {
		return err
	}

	publish(ctx, s.bus, s.logger, &events.MovieUpdated{
		BaseEvent: events.NewBaseEvent(events.EventMovieUpdated, events.EntityMovie, m.ID),
		Slug:      m.Slug,
		Name:      m.Name,
	})
	return nil
}

// Delete removes a movie. Deleting a missing movie is a no-op.
func (s *MovieService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, catalog.CollectionMovies, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete movie %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, catalog.CollectionMovies, id); err != nil {
		return fmt.Errorf("delete movie %s: %w", id, err)
	}
	s.logger.Info("movie deleted", "id", id)

	publish(ctx, s.bus, s.logger, &events.MovieDeleted{
		BaseEvent: events.NewBaseEvent(events.EventMovieDeleted, events.EntityMovie, id),
	})
	return nil
}

// Get retrieves a movie by ID.
// Returns ErrNotFound if the movie does not exist.
func (s *MovieService) Get(ctx context.Context, id string) (*catalog.Movie, error) {
	doc, err := s.store.Get(ctx, catalog.CollectionMovies, id)
	if err != nil {
		return nil, fmt.Errorf("get movie %s: %w", id, mapStoreError(err))
	}
	return DecodeMovie(doc)
}

// GetBySlug retrieves a movie by slug.
func (s *MovieService) GetBySlug(ctx context.Context, slug string) (*catalog.Movie, error) {
	doc, ok, err := findOne(ctx, s.store, catalog.CollectionMovies, catalog.FieldSlug, slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("get movie %q: %w", slug, ErrNotFound)
	}
	return DecodeMovie(doc)
}

// IncrementView bumps the movie's view count and the totalViews of each of its categories.
// View bumps do not publish events.
func (s *MovieService) IncrementView(ctx context.Context, id string) (int64, error) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()

	m, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	m.View++
	if err := s.put(ctx, m); err != nil {
		return 0, err
	}

	if s.categories != nil {
		for _, slug := range m.CategorySlugs {
			if err := s.categories.AddViews(ctx, slug, 1); err != nil && !errors.Is(err, ErrNotFound) {
				s.logger.Warn("category view bump failed", "slug", slug, "error", err)
			}
		}
	}
	return m.View, nil
}

// CountMissingDerived counts movies stored without categoryCountrySlugs.
func (s *MovieService) CountMissingDerived(ctx context.Context) (int, error) {
	docs, err := s.store.Query(ctx, catalog.CollectionMovies, nil)
	if err != nil {
		return 0, fmt.Errorf("scan movies: %w", err)
	}
	n := 0
	for _, d := range docs {
		if arr, ok := d.Fields[catalog.FieldCategoryCountrySlugs].([]any); !ok || len(arr) == 0 {
			n++
		}
	}
	return n, nil
}

// Reindex re-derives and rewrites every movie. Returns the number rewritten.
func (s *MovieService) Reindex(ctx context.Context) (int, error) {
	docs, err := s.store.Query(ctx, catalog.CollectionMovies, nil)
	if err != nil {
		return 0, fmt.Errorf("scan movies: %w", err)
	}
	for _, d := range docs {
		m, err := DecodeMovie(d)
		if err != nil {
			return 0, err
		}
		m.Derive()
		if err := s.put(ctx, m); err != nil {
			return 0, err
		}
	}
	s.logger.Info("movies reindexed", "count", len(docs))

	publish(ctx, s.bus, s.logger, &events.MoviesReindexed{
		BaseEvent: events.NewBaseEvent(events.EventMoviesReindexed, events.EntityMovie, ""),
		Count:     len(docs),
	})
	return len(docs), nil
}

func (s *MovieService) checkSlug(ctx context.Context, slug, selfID string) error {
	doc, ok, err := findOne(ctx, s.store, catalog.CollectionMovies, catalog.FieldSlug, slug)
	if err != nil {
		return err
	}
	if ok && doc.ID != selfID {
		return fmt.Errorf("movie slug %q: %w", slug, ErrDuplicate)
	}
	return nil
}

func (s *MovieService) put(ctx context.Context, m *catalog.Movie) error {
	doc, err := EncodeMovie(m)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, catalog.CollectionMovies, doc); err != nil {
		return fmt.Errorf("put movie %s: %w", m.ID, err)
	}
	return nil
}
