package v1

import (
	"net/http"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/library"
)

// registerTaxonomy mounts the CRUD and movie-list routes for one taxonomy.
func (s *Server) registerTaxonomy(mux *http.ServeMux, name string, svc *library.TaxonomyService, filter func(slug string) catalog.FilterState) {
	base := "/api/v1/" + name

	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.List(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		items := make([]taxonResponse, len(entries))
		for i, e := range entries {
			items[i] = toTaxonResponse(e)
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})

	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var req taxonRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		t := &catalog.TaxonEntry{Name: req.Name, Slug: req.Slug}
		if err := svc.Add(r.Context(), t); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTaxonResponse(t))
	})

	mux.HandleFunc("PUT "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req taxonRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		t := &catalog.TaxonEntry{ID: r.PathValue("id"), Name: req.Name, Slug: req.Slug}
		if err := svc.Update(r.Context(), t); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTaxonResponse(t))
	})

	mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), r.PathValue("id")); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET "+base+"/{slug}/movies", func(w http.ResponseWriter, r *http.Request) {
		f := filter(r.PathValue("slug"))
		f.Sort = catalog.SortKey(r.URL.Query().Get("sort"))
		s.fetchPage(w, r, "", f)
	})
}

func toTaxonResponse(t *catalog.TaxonEntry) taxonResponse {
	return taxonResponse{TaxonEntry: t, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}
