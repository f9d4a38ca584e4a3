package v1

import (
	"context"
	"net/http"

	"github.com/vmunix/phimgo/internal/catalog"
)

// defaultRailSize matches the home page carousels.
const defaultRailSize = 12

func (s *Server) getRail(w http.ResponseWriter, r *http.Request) {
	limit := railLimit(r)
	rails := s.lib.Rails

	var fetch func(context.Context) ([]*catalog.Movie, error)
	switch r.PathValue("name") {
	case "top-new":
		fetch = func(ctx context.Context) ([]*catalog.Movie, error) { return rails.TopNew(ctx, limit) }
	case "top-view":
		fetch = func(ctx context.Context) ([]*catalog.Movie, error) { return rails.TopViewed(ctx, limit) }
	case "trending":
		fetch = func(ctx context.Context) ([]*catalog.Movie, error) { return rails.Trending(ctx, limit) }
	case "new-single":
		fetch = func(ctx context.Context) ([]*catalog.Movie, error) {
			return rails.NewByType(ctx, catalog.TypeSingle, limit)
		}
	case "new-series":
		fetch = func(ctx context.Context) ([]*catalog.Movie, error) {
			return rails.NewByType(ctx, catalog.TypeSeries, limit)
		}
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown rail")
		return
	}

	movies, err := fetch(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listMoviesResponse{Items: nonNil(movies)})
}

func (s *Server) countryRail(w http.ResponseWriter, r *http.Request) {
	movies, err := s.lib.Rails.ByCountry(r.Context(), r.PathValue("slug"), railLimit(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listMoviesResponse{Items: nonNil(movies)})
}

func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	movies, err := s.lib.Rails.Suggestions(r.Context(), userID(r), railLimit(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listMoviesResponse{Items: nonNil(movies)})
}

func railLimit(r *http.Request) int {
	limit := queryInt(r, "limit", defaultRailSize)
	if limit < 1 || limit > 50 {
		return defaultRailSize
	}
	return limit
}

func nonNil(movies []*catalog.Movie) []*catalog.Movie {
	if movies == nil {
		return []*catalog.Movie{}
	}
	return movies
}
