package v1

import (
	"net/http"

	"github.com/vmunix/phimgo/internal/catalog"
)

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.lib.Comments.ListByMovie(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items := make([]commentResponse, len(comments))
	for i, c := range comments {
		items[i] = toCommentResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	movieID := r.PathValue("id")
	if _, err := s.lib.Movies.Get(r.Context(), movieID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	c := &catalog.Comment{
		MovieID: movieID,
		UserID:  userID(r),
		Name:    req.Name,
		Avatar:  req.Avatar,
		Content: req.Content,
		Rating:  req.Rating,
	}
	if err := s.lib.Comments.Add(r.Context(), c); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(c))
}

func (s *Server) likeComment(w http.ResponseWriter, r *http.Request) {
	c, err := s.lib.Comments.Like(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.Comments.Remove(r.Context(), userID(r), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCommentResponse(c *catalog.Comment) commentResponse {
	return commentResponse{Comment: c, CreatedAt: c.CreatedAt}
}
