// Package library provides the catalog services: movies, taxonomy, comments,
// per-user lists, statistics and home rails, all backed by a docstore.Store.
package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
)

// Library bundles the catalog services over one store and bus.
type Library struct {
	Movies     *MovieService
	Categories *TaxonomyService
	Countries  *TaxonomyService
	Comments   *CommentService
	Lists      map[catalog.ListKind]*ListService
	Stats      *StatsService
	Rails      *Rails
}

// New wires every service. bus may be nil to disable events.
func New(store docstore.Store, bus *events.Bus, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	categories := NewCategories(store, bus, logger)
	countries := NewCountries(store, bus, logger)
	lists := map[catalog.ListKind]*ListService{
		catalog.ListFavorites: NewListService(store, catalog.ListFavorites, bus, logger),
		catalog.ListSaved:     NewListService(store, catalog.ListSaved, bus, logger),
		catalog.ListWatched:   NewListService(store, catalog.ListWatched, bus, logger),
	}
	return &Library{
		Movies:     NewMovieService(store, categories, bus, logger),
		Categories: categories,
		Countries:  countries,
		Comments:   NewCommentService(store, bus, logger),
		Lists:      lists,
		Stats:      NewStatsService(store, bus, logger),
		Rails:      NewRails(store, lists[catalog.ListWatched]),
	}
}

// List returns the service for a list kind.
func (l *Library) List(kind catalog.ListKind) (*ListService, error) {
	s, ok := l.Lists[kind]
	if !ok {
		return nil, fmt.Errorf("list %q: %w", kind, ErrNotFound)
	}
	return s, nil
}

// publish delivers e on bus when one is configured. Delivery failures are
// logged, never returned: the write has already happened.
func publish(ctx context.Context, bus *events.Bus, logger *slog.Logger, e events.Event) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, e); err != nil {
		logger.Warn("publish event failed", "type", e.EventType(), "entity_id", e.EntityID(), "error", err)
	}
}

// findOne returns the first document in collection where field == value.
func findOne(ctx context.Context, store docstore.Store, collection, field string, value any) (docstore.Document, bool, error) {
	docs, err := store.Query(ctx, collection, []docstore.Constraint{
		docstore.Eq(field, value),
		docstore.Limit(1),
	})
	if err != nil {
		return docstore.Document{}, false, fmt.Errorf("find %s by %s: %w", collection, field, err)
	}
	if len(docs) == 0 {
		return docstore.Document{}, false, nil
	}
	return docs[0], true, nil
}
