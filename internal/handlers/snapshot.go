package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/phimgo/internal/events"
	"github.com/vmunix/phimgo/internal/library"
)

// SnapshotHandler refreshes the movie copies stored on list entries when a
// movie changes.
type SnapshotHandler struct {
	*BaseHandler
	lib *library.Library
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(bus *events.Bus, lib *library.Library, logger *slog.Logger) *SnapshotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotHandler{
		BaseHandler: NewBaseHandler(bus, logger.With("component", "snapshot")),
		lib:         lib,
	}
}

// Name returns the handler name.
func (h *SnapshotHandler) Name() string {
	return "snapshot"
}

// Start begins processing movie.updated events.
func (h *SnapshotHandler) Start(ctx context.Context) error {
	ch := h.Bus().Subscribe(events.EventMovieUpdated, 100)
	return consume(ctx, h.Bus(), ch, h.handleMovieUpdated)
}

func (h *SnapshotHandler) handleMovieUpdated(ctx context.Context, e events.Event) {
	movie, err := h.lib.Movies.Get(ctx, e.EntityID())
	if err != nil {
		// deleted since; the cleanup handler owns that case
		if !errors.Is(err, library.ErrNotFound) {
			h.Logger().Error("failed to load movie", "movie_id", e.EntityID(), "error", err)
		}
		return
	}

	var refreshed int
	for kind, list := range h.lib.Lists {
		n, err := list.RefreshMovie(ctx, *movie)
		refreshed += n
		if err != nil {
			h.Logger().Error("failed to refresh list entries", "movie_id", movie.ID, "list", kind, "error", err)
		}
	}
	if refreshed > 0 {
		h.Logger().Debug("refreshed list snapshots", "movie_id", movie.ID, "entries", refreshed)
	}
}
