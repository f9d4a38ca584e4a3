package v1

import (
	"context"
	"net/http"
	"strings"
)

// UserHeader carries the authenticated user ID, set by the auth proxy in front of the API.
const UserHeader = "X-User-ID"

type userKey struct{}

// requireUser wraps a handler and returns 401 if no user is attached to the request.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Sign in required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
	}
}

// userID returns the user set by requireUser.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

// requireSource wraps a handler and returns 503 if the movie source is not configured.
func (s *Server) requireSource(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Source == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Movie source not configured")
			return
		}
		next(w, r)
	}
}
