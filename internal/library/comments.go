package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
)

const fieldCommentMovieID = "movieId"

// Rating bounds for comments.
const (
	MinRating = 1
	MaxRating = 10
)

// CommentService manages movie comments.
type CommentService struct {
	store  docstore.Store
	bus    *events.Bus
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewCommentService creates a comment service.
func NewCommentService(store docstore.Store, bus *events.Bus, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		store:  store,
		bus:    bus,
		logger: logger.With("component", "comments"),
		now:    time.Now,
	}
}

// Add stores a new comment. Sets ID and CreatedAt; resets like state.
func (s *CommentService) Add(ctx context.Context, c *catalog.Comment) error {
	switch {
	case c.UserID == "":
		return fmt.Errorf("%w: comment user is required", ErrInvalid)
	case c.MovieID == "":
		return fmt.Errorf("%w: comment movie is required", ErrInvalid)
	case strings.TrimSpace(c.Content) == "":
		return fmt.Errorf("%w: comment content is required", ErrInvalid)
	case c.Rating < MinRating || c.Rating > MaxRating:
		return fmt.Errorf("%w: rating %d outside %d..%d", ErrInvalid, c.Rating, MinRating, MaxRating)
	}

	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	c.LikeCount = 0
	c.LikedBy = []string{}
	if err := s.put(ctx, c); err != nil {
		return err
	}

	publish(ctx, s.bus, s.logger, &events.CommentAdded{
		BaseEvent: events.NewBaseEvent(events.EventCommentAdded, events.EntityComment, c.ID),
		MovieID:   c.MovieID,
		UserID:    c.UserID,
		Rating:    c.Rating,
	})
	return nil
}

// ListByMovie returns a movie's comments, newest first.
func (s *CommentService) ListByMovie(ctx context.Context, movieID string) ([]*catalog.Comment, error) {
	docs, err := s.store.Query(ctx, catalog.CollectionComments, []docstore.Constraint{
		docstore.Eq(fieldCommentMovieID, movieID),
		docstore.OrderBy(catalog.FieldCreatedAt, docstore.Desc),
	})
	if err != nil {
		return nil, fmt.Errorf("list comments for %s: %w", movieID, err)
	}
	out := make([]*catalog.Comment, 0, len(docs))
	for _, d := range docs {
		c, err := decodeComment(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Get retrieves a comment by ID.
func (s *CommentService) Get(ctx context.Context, id string) (*catalog.Comment, error) {
	doc, err := s.store.Get(ctx, catalog.CollectionComments, id)
	if err != nil {
		return nil, fmt.Errorf("get comment %s: %w", id, mapStoreError(err))
	}
	return decodeComment(doc)
}

// Like records userID's like once. Liking again is a no-op.
func (s *CommentService) Like(ctx context.Context, userID, id string) (*catalog.Comment, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: like requires a user", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if slices.Contains(c.LikedBy, userID) {
		return c, nil
	}
	c.LikedBy = append(c.LikedBy, userID)
	c.LikeCount = len(c.LikedBy)
	if err := s.put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a comment. Deleting a missing comment is a no-op.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, catalog.CollectionComments, id); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	return nil
}

// Remove deletes one of userID's comments. Another user's comment is reported as ErrNotFound.
func (s *CommentService) Remove(ctx context.Context, userID, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return fmt.Errorf("remove comment %s: %w", id, ErrNotFound)
	}
	return s.Delete(ctx, id)
}

// DeleteByMovie removes every comment on movieID and returns how many were removed.
func (s *CommentService) DeleteByMovie(ctx context.Context, movieID string) (int, error) {
	docs, err := s.store.Query(ctx, catalog.CollectionComments, []docstore.Constraint{
		docstore.Eq(fieldCommentMovieID, movieID),
	})
	if err != nil {
		return 0, fmt.Errorf("list comments for %s: %w", movieID, err)
	}
	for i, d := range docs {
		if err := s.Delete(ctx, d.ID); err != nil {
			return i, err
		}
	}
	return len(docs), nil
}

func (s *CommentService) put(ctx context.Context, c *catalog.Comment) error {
	doc, err := encodeComment(c)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, catalog.CollectionComments, doc); err != nil {
		return fmt.Errorf("put comment %s: %w", c.ID, err)
	}
	return nil
}
