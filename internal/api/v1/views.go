package v1

import (
	"net/http"
	"strconv"

	"github.com/vmunix/phimgo/internal/listing"
)

func (s *Server) mountView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	filters, err := s.resolveFilters(r.Context(), req.Filters)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	v, page, err := s.deps.Views.Mount(r.Context(), listing.Change{Term: req.Term, Filters: filters}, req.PageSize)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mountResponse{ID: v.ID(), Page: page})
}

func (s *Server) viewPage(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Views.Get(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
		return
	}
	page, err := v.Page(r.Context(), n)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// applyView replaces a view's term and filters and returns its new first page.
func (s *Server) applyView(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Views.Get(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req viewRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	filters, err := s.resolveFilters(r.Context(), req.Filters)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := v.Apply(r.Context(), listing.Change{Term: req.Term, Filters: filters})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) unmountView(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Views.Unmount(r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
