package v1

import "net/http"

func (s *Server) latestStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.lib.Stats.Latest(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Snapshot: snap, TakenAt: snap.TakenAt})
}

func (s *Server) distribution(w http.ResponseWriter, r *http.Request) {
	d, err := s.lib.Stats.Distribution(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
