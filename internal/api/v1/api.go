// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/library"
	"github.com/vmunix/phimgo/internal/listing"
	"github.com/vmunix/phimgo/internal/ophim"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Server is the v1 API server.
type Server struct {
	deps     ServerDeps
	lib      *library.Library
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		deps:     deps,
		lib:      deps.Library,
		validate: newValidator(),
		logger:   logger.With("component", "api"),
	}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Movies
	mux.HandleFunc("GET /api/v1/movies", s.searchMovies)
	mux.HandleFunc("GET /api/v1/movies/{slug}", s.getMovie)
	mux.HandleFunc("GET /api/v1/movies/{slug}/episodes", s.requireSource(s.listEpisodes))
	mux.HandleFunc("POST /api/v1/movies", s.addMovie)
	mux.HandleFunc("POST /api/v1/movies/import", s.requireSource(s.importMovie))
	mux.HandleFunc("POST /api/v1/movies/reindex", s.reindexMovies)
	mux.HandleFunc("GET /api/v1/filters", s.getFilterOptions)
	mux.HandleFunc("PUT /api/v1/movies/{id}", s.updateMovie)
	mux.HandleFunc("DELETE /api/v1/movies/{id}", s.deleteMovie)
	mux.HandleFunc("POST /api/v1/movies/{id}/view", s.viewMovie)

	// Listing views
	mux.HandleFunc("POST /api/v1/views", s.mountView)
	mux.HandleFunc("GET /api/v1/views/{id}/pages/{n}", s.viewPage)
	mux.HandleFunc("PUT /api/v1/views/{id}", s.applyView)
	mux.HandleFunc("DELETE /api/v1/views/{id}", s.unmountView)

	// Home rails
	mux.HandleFunc("GET /api/v1/rails/{name}", s.getRail)
	mux.HandleFunc("GET /api/v1/rails/country/{slug}", s.countryRail)
	mux.HandleFunc("GET /api/v1/suggestions", s.requireUser(s.suggestions))

	// Taxonomy
	s.registerTaxonomy(mux, "categories", s.lib.Categories, func(slug string) catalog.FilterState {
		return catalog.FilterState{Categories: []string{slug}}
	})
	s.registerTaxonomy(mux, "countries", s.lib.Countries, func(slug string) catalog.FilterState {
		return catalog.FilterState{Countries: []string{slug}}
	})

	// Comments
	mux.HandleFunc("GET /api/v1/movies/{id}/comments", s.listComments)
	mux.HandleFunc("POST /api/v1/movies/{id}/comments", s.requireUser(s.addComment))
	mux.HandleFunc("POST /api/v1/comments/{id}/like", s.requireUser(s.likeComment))
	mux.HandleFunc("DELETE /api/v1/comments/{id}", s.requireUser(s.deleteComment))

	// User lists
	mux.HandleFunc("GET /api/v1/me/{list}", s.requireUser(s.listEntries))
	mux.HandleFunc("POST /api/v1/me/{list}", s.requireUser(s.addEntry))
	mux.HandleFunc("DELETE /api/v1/me/{list}/{entryID}", s.requireUser(s.removeEntry))

	// Statistics
	mux.HandleFunc("GET /api/v1/stats", s.latestStats)
	mux.HandleFunc("GET /api/v1/stats/distribution", s.distribution)

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
	mux.HandleFunc("GET /api/v1/events", s.listEvents)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service and store errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case docstore.IsQueryError(err):
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
	case errors.Is(err, docstore.ErrUnavailable):
		s.logger.Warn("store unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Store temporarily unavailable")
	case errors.Is(err, library.ErrNotFound),
		errors.Is(err, listing.ErrViewNotFound),
		errors.Is(err, ophim.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, library.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, library.ErrInvalid):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// decodeBody decodes and validates a JSON body into v, writing the error
// response itself. Returns false if the handler should stop.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
		return false
	}
	return true
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	movies, err := s.deps.Store.Count(r.Context(), catalog.CollectionMovies, nil)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	missing, err := s.lib.Movies.CountMissingDerived(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:         "ok",
		Version:        s.deps.Version,
		Movies:         movies,
		MissingDerived: missing,
		Views:          s.deps.Views.Len(),
		Source:         s.deps.Source != nil,
	})
}
