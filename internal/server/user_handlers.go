package server

import (
	"net/http"
	"strconv"
)

// pagination reads skip/limit query parameters with sane bounds.
func pagination(r *http.Request) (int, int) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}
	return skip, limit
}

// ListUsersHandler returns the user directory.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, limit := pagination(r)
		users, err := s.repos.Users.List(r.Context(), skip, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, users)
	}
}

// MeHandler returns the authenticated user.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "Not authenticated"})
			return
		}
		s.writeJSON(w, http.StatusOK, user)
	}
}
