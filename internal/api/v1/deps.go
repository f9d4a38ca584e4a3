package v1

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
	"github.com/vmunix/phimgo/internal/library"
	"github.com/vmunix/phimgo/internal/listing"
	"github.com/vmunix/phimgo/internal/ophim"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// MovieSource looks up movies and episodes in the upstream catalog.
type MovieSource interface {
	GetMovie(ctx context.Context, slug string) (*ophim.Movie, error)
	GetEpisodes(ctx context.Context, slug string) ([]ophim.Episode, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Store   docstore.Store
	Library *library.Library
	Lister  *listing.Lister
	Views   *listing.Registry

	// Optional dependencies (nil if not configured)
	Source   MovieSource
	EventLog *events.EventLog
	Logger   *slog.Logger
	Version  string
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Store == nil {
		return errors.New("document store is required")
	}
	if d.Library == nil {
		return errors.New("library is required")
	}
	if d.Lister == nil {
		return errors.New("lister is required")
	}
	if d.Views == nil {
		return errors.New("view registry is required")
	}
	return nil
}
