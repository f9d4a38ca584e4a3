package v1

import (
	"net/http"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/library"
)

// listService resolves the {list} path value, writing a 404 for unknown lists.
func (s *Server) listService(w http.ResponseWriter, r *http.Request) (*library.ListService, bool) {
	svc, err := s.lib.List(catalog.ListKind(r.PathValue("list")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	return svc, true
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.listService(w, r)
	if !ok {
		return
	}
	entries, err := svc.List(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items := make([]listEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = listEntryResponse{ListEntry: e, CreatedAt: e.CreatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.listService(w, r)
	if !ok {
		return
	}
	var req listEntryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	movie, err := s.lib.Movies.Get(r.Context(), req.MovieID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	entry, err := svc.Add(r.Context(), userID(r), *movie, req.Episode)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listEntryResponse{ListEntry: entry, CreatedAt: entry.CreatedAt})
}

func (s *Server) removeEntry(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.listService(w, r)
	if !ok {
		return
	}
	if err := svc.Remove(r.Context(), userID(r), r.PathValue("entryID")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
