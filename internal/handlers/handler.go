// Package handlers reacts to catalog events to keep dependent documents consistent.
package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/phimgo/internal/events"
)

// Handler processes events of specific types.
type Handler interface {
	// Start begins processing events (blocking).
	Start(ctx context.Context) error

	// Name returns handler name for logging.
	Name() string
}

// BaseHandler provides common handler functionality.
type BaseHandler struct {
	bus    *events.Bus
	logger *slog.Logger
}

// NewBaseHandler creates a base handler.
func NewBaseHandler(bus *events.Bus, logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		bus:    bus,
		logger: logger,
	}
}

// Bus returns the event bus.
func (h *BaseHandler) Bus() *events.Bus {
	return h.bus
}

// Logger returns the handler's logger.
func (h *BaseHandler) Logger() *slog.Logger {
	return h.logger
}

// consume delivers events from ch to fn until ctx is done or ch closes.
func consume(ctx context.Context, bus *events.Bus, ch <-chan events.Event, fn func(context.Context, events.Event)) error {
	defer bus.Unsubscribe(ch)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil // Channel closed
			}
			fn(ctx, e)
		case <-ctx.Done():
			return nil
		}
	}
}
