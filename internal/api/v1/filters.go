package v1

import (
	"net/http"
	"time"

	"github.com/vmunix/phimgo/internal/catalog"
)

// getFilterOptions lists the choices a filter panel offers. Categories and
// countries come from their own routes.
func (s *Server) getFilterOptions(w http.ResponseWriter, r *http.Request) {
	resp := filterOptionsResponse{
		Types:     []catalog.MovieType{catalog.TypeSingle, catalog.TypeSeries, catalog.TypeAnimation, catalog.TypeTVShows},
		Languages: []catalog.Language{catalog.LangVietsub, catalog.LangThuyetMinh, catalog.LangLongTieng},
		Years:     catalog.YearOptions(time.Now().Year()),
	}
	for _, o := range catalog.Sorts() {
		resp.Sorts = append(resp.Sorts, sortOption{
			Key:     o.Key,
			Label:   o.Label,
			Default: o.Key == catalog.DefaultSort.Key,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// reindexMovies rebuilds the derived search fields of every movie.
func (s *Server) reindexMovies(w http.ResponseWriter, r *http.Request) {
	missing, err := s.lib.Movies.CountMissingDerived(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	n, err := s.lib.Movies.Reindex(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reindexResponse{Reindexed: n, MissingBefore: missing})
}
