package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
)

const (
	fieldEntryUserID  = "user_id"
	fieldEntryMovieID = "movie_id"
	fieldEntryEpisode = "episode"
)

// ListService manages one kind of per-user movie list.
//
// Favorites and saved entries are unique per (user, movie); adding one twice
// returns ErrDuplicate. Watched entries are unique per (user, movie, episode)
// and adding one again refreshes its timestamp.
type ListService struct {
	store      docstore.Store
	kind       catalog.ListKind
	collection string
	bus        *events.Bus
	logger     *slog.Logger
	now        func() time.Time

	mu sync.Mutex
}

// NewListService creates the service for kind.
func NewListService(store docstore.Store, kind catalog.ListKind, bus *events.Bus, logger *slog.Logger) *ListService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListService{
		store:      store,
		kind:       kind,
		collection: kind.Collection(),
		bus:        bus,
		logger:     logger.With("component", "list", "list", string(kind)),
		now:        time.Now,
	}
}

// Kind returns the list this service manages.
func (s *ListService) Kind() catalog.ListKind { return s.kind }

// Add puts movie on userID's list. episode is only kept for watched lists.
func (s *ListService) Add(ctx context.Context, userID string, movie catalog.Movie, episode string) (*catalog.ListEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: list requires a user", ErrInvalid)
	}
	if movie.ID == "" {
		return nil, fmt.Errorf("%w: list entry requires a movie", ErrInvalid)
	}
	if s.kind != catalog.ListWatched {
		episode = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.find(ctx, userID, movie.ID, episode)
	if err != nil {
		return nil, err
	}

	entry := &catalog.ListEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		MovieID:   movie.ID,
		Movie:     movie,
		Episode:   episode,
		CreatedAt: s.now(),
	}
	if existing != nil {
		if s.kind != catalog.ListWatched {
			return nil, fmt.Errorf("%s entry for movie %s: %w", s.kind, movie.ID, ErrDuplicate)
		}
		entry.ID = existing.ID
	}

	doc, err := encodeEntry(entry)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, s.collection, doc); err != nil {
		return nil, fmt.Errorf("put %s entry: %w", s.kind, err)
	}
	s.changed(ctx, entry, "added")
	return entry, nil
}

func (s *ListService) find(ctx context.Context, userID, movieID, episode string) (*catalog.ListEntry, error) {
	cs := []docstore.Constraint{
		docstore.Eq(fieldEntryUserID, userID),
		docstore.Eq(fieldEntryMovieID, movieID),
	}
	if s.kind == catalog.ListWatched {
		cs = append(cs, docstore.Eq(fieldEntryEpisode, episode))
	}
	docs, err := s.store.Query(ctx, s.collection, append(cs, docstore.Limit(1)))
	if err != nil {
		return nil, fmt.Errorf("find %s entry: %w", s.kind, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeEntry(docs[0])
}

// List returns userID's entries, newest first.
func (s *ListService) List(ctx context.Context, userID string) ([]*catalog.ListEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: list requires a user", ErrInvalid)
	}
	docs, err := s.store.Query(ctx, s.collection, []docstore.Constraint{
		docstore.Eq(fieldEntryUserID, userID),
		docstore.OrderBy(catalog.FieldCreatedAt, docstore.Desc),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	out := make([]*catalog.ListEntry, 0, len(docs))
	for _, d := range docs {
		e, err := decodeEntry(d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Remove deletes one of userID's entries. Another user's entry is reported as ErrNotFound.
func (s *ListService) Remove(ctx context.Context, userID, entryID string) error {
	doc, err := s.store.Get(ctx, s.collection, entryID)
	if err != nil {
		return fmt.Errorf("remove %s entry %s: %w", s.kind, entryID, mapStoreError(err))
	}
	entry, err := decodeEntry(doc)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return fmt.Errorf("remove %s entry %s: %w", s.kind, entryID, ErrNotFound)
	}
	if err := s.store.Delete(ctx, s.collection, entryID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("remove %s entry %s: %w", s.kind, entryID, err)
	}
	s.changed(ctx, entry, "removed")
	return nil
}

// entriesFor returns every user's entries for movieID.
func (s *ListService) entriesFor(ctx context.Context, movieID string) ([]*catalog.ListEntry, error) {
	docs, err := s.store.Query(ctx, s.collection, []docstore.Constraint{
		docstore.Eq(fieldEntryMovieID, movieID),
	})
	if err != nil {
		return nil, fmt.Errorf("find %s entries for %s: %w", s.kind, movieID, err)
	}
	out := make([]*catalog.ListEntry, 0, len(docs))
	for _, d := range docs {
		e, err := decodeEntry(d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// RemoveMovie deletes movieID from every user's list and returns the number
// of entries removed.
func (s *ListService) RemoveMovie(ctx context.Context, movieID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entriesFor(ctx, movieID)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if err := s.store.Delete(ctx, s.collection, e.ID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return i, fmt.Errorf("remove %s entry %s: %w", s.kind, e.ID, err)
		}
		s.changed(ctx, e, "removed")
	}
	return len(entries), nil
}

// RefreshMovie replaces the movie snapshot on every entry for movie.ID.
func (s *ListService) RefreshMovie(ctx context.Context, movie catalog.Movie) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entriesFor(ctx, movie.ID)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		e.Movie = movie
		doc, err := encodeEntry(e)
		if err != nil {
			return i, err
		}
		if err := s.store.Put(ctx, s.collection, doc); err != nil {
			return i, fmt.Errorf("refresh %s entry %s: %w", s.kind, e.ID, err)
		}
	}
	return len(entries), nil
}

func (s *ListService) changed(ctx context.Context, e *catalog.ListEntry, action string) {
	publish(ctx, s.bus, s.logger, &events.ListChanged{
		BaseEvent: events.NewBaseEvent(events.EventListChanged, events.EntityList, e.ID),
		UserID:    e.UserID,
		List:      string(s.kind),
		MovieID:   e.MovieID,
		Action:    action,
	})
}
