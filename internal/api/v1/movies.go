package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/library"
	"github.com/vmunix/phimgo/internal/query"
)

// parseFilters reads the comma-separated filter parameters of a search.
// Category and country values may be slugs or display names.
func (s *Server) parseFilters(r *http.Request) (catalog.FilterState, error) {
	q := r.URL.Query()
	f := catalog.FilterState{Sort: catalog.SortKey(q.Get("sort"))}

	for _, t := range catalog.SplitList(q.Get("type")) {
		f.Types = append(f.Types, catalog.MovieType(t))
	}
	for _, l := range catalog.SplitList(q.Get("lang")) {
		f.Languages = append(f.Languages, catalog.Language(l))
	}
	for _, y := range catalog.SplitList(q.Get("year")) {
		opt, err := catalog.ParseYearOption(y)
		if err != nil {
			return f, &docstore.QueryError{Constraint: "year", Err: err}
		}
		f.Years = append(f.Years, opt)
	}
	f.Categories = catalog.SplitList(q.Get("category"))
	f.Countries = catalog.SplitList(q.Get("country"))

	return s.resolveFilters(r.Context(), f)
}

// resolveFilters replaces category and country names with their slugs.
func (s *Server) resolveFilters(ctx context.Context, f catalog.FilterState) (catalog.FilterState, error) {
	var err error
	if f.Categories, err = resolveTaxa(ctx, s.lib.Categories, f.Categories); err != nil {
		return f, err
	}
	if f.Countries, err = resolveTaxa(ctx, s.lib.Countries, f.Countries); err != nil {
		return f, err
	}
	return f, nil
}

// resolveTaxa keeps known slugs, fuzzy-matches the rest and passes through
// values that match nothing, which then filter to an empty result.
func resolveTaxa(ctx context.Context, svc *library.TaxonomyService, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		_, err := svc.GetBySlug(ctx, v)
		if err == nil {
			out = append(out, v)
			continue
		}
		if !errors.Is(err, library.ErrNotFound) {
			return nil, err
		}
		t, err := svc.Resolve(ctx, v)
		switch {
		case err == nil:
			out = append(out, t.Slug)
		case errors.Is(err, library.ErrNotFound):
			out = append(out, v)
		default:
			return nil, err
		}
	}
	return out, nil
}

// parseCursor reads the optional cursor parameter. A cursor means the
// request is for a page after the first; later pages without one are
// rejected rather than served as page 1.
func parseCursor(r *http.Request) (*docstore.Cursor, int, error) {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		if page := queryInt(r, "page", 1); page > 1 {
			return nil, 0, &docstore.QueryError{
				Constraint: fmt.Sprintf("page %d without cursor", page),
				Err:        query.ErrInvalidPage,
			}
		}
		return nil, 1, nil
	}
	c, err := docstore.ParseCursor(raw)
	if err != nil {
		return nil, 0, &docstore.QueryError{Constraint: "cursor", Err: err}
	}
	return c, queryInt(r, "page", 2), nil
}

func (s *Server) searchMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := s.parseFilters(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.fetchPage(w, r, r.URL.Query().Get("q"), filters)
}

// fetchPage serves one stateless page for term and filters.
func (s *Server) fetchPage(w http.ResponseWriter, r *http.Request, term string, filters catalog.FilterState) {
	cursor, page, err := parseCursor(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	result, err := s.deps.Lister.Fetch(r.Context(), query.SearchQuery{
		Term:     term,
		Filters:  filters,
		Page:     page,
		PageSize: queryInt(r, "page_size", s.deps.Views.DefaultPageSize()),
		Cursor:   cursor,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	m, err := s.lib.Movies.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(m))
}

func (s *Server) listEpisodes(w http.ResponseWriter, r *http.Request) {
	eps, err := s.deps.Source.GetEpisodes(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": eps})
}

func (s *Server) addMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	m := req.toMovie()
	if err := s.lib.Movies.Add(r.Context(), m); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovieResponse(m))
}

// importMovie copies a movie from the upstream source into the catalog.
func (s *Server) importMovie(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	src, err := s.deps.Source.GetMovie(r.Context(), req.Slug)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	m := src.Catalog()
	if err := s.lib.Movies.Add(r.Context(), m); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info("movie imported", "slug", m.Slug, "id", m.ID)
	writeJSON(w, http.StatusCreated, toMovieResponse(m))
}

func (s *Server) updateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	m := req.toMovie()
	m.ID = r.PathValue("id")
	if err := s.lib.Movies.Update(r.Context(), m); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(m))
}

func (s *Server) deleteMovie(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.Movies.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) viewMovie(w http.ResponseWriter, r *http.Request) {
	views, err := s.lib.Movies.IncrementView(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"view": views})
}
