package v1

import (
	"net/http"
	"time"
)

// listEvents serves the newest catalog events. ?type= narrows to event
// types starting with the value, e.g. "movie." or "comment.added".
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	const maxLimit = 1000
	limit = min(limit, maxLimit)

	if s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	recs, err := s.deps.EventLog.Recent(r.Context(), limit, r.URL.Query().Get("type"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := listEventsResponse{
		Items: make([]EventResponse, len(recs)),
		Total: len(recs),
	}
	for i, e := range recs {
		resp.Items[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.Type,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
			Payload:    e.Payload,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
