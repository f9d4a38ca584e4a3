package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/phimgo/internal/events"
	"github.com/vmunix/phimgo/internal/library"
)

// CleanupHandler removes the comments and list entries of deleted movies.
type CleanupHandler struct {
	*BaseHandler
	lib *library.Library
}

// NewCleanupHandler creates a new cleanup handler.
func NewCleanupHandler(bus *events.Bus, lib *library.Library, logger *slog.Logger) *CleanupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupHandler{
		BaseHandler: NewBaseHandler(bus, logger.With("component", "cleanup")),
		lib:         lib,
	}
}

// Name returns the handler name.
func (h *CleanupHandler) Name() string {
	return "cleanup"
}

// Start begins processing movie.deleted events.
func (h *CleanupHandler) Start(ctx context.Context) error {
	ch := h.Bus().Subscribe(events.EventMovieDeleted, 100)
	return consume(ctx, h.Bus(), ch, h.handleMovieDeleted)
}

func (h *CleanupHandler) handleMovieDeleted(ctx context.Context, e events.Event) {
	movieID := e.EntityID()

	comments, err := h.lib.Comments.DeleteByMovie(ctx, movieID)
	if err != nil {
		h.Logger().Error("failed to delete comments", "movie_id", movieID, "error", err)
	}

	var entries int
	for kind, list := range h.lib.Lists {
		n, err := list.RemoveMovie(ctx, movieID)
		entries += n
		if err != nil {
			h.Logger().Error("failed to remove list entries", "movie_id", movieID, "list", kind, "error", err)
		}
	}

	if comments > 0 || entries > 0 {
		h.Logger().Info("cleaned up deleted movie",
			"movie_id", movieID,
			"comments", comments,
			"list_entries", entries)
	}
}
