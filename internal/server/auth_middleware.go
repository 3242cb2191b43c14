package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopworks/go-commerce-server/internal/models"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *models.User
const ContextKeyUser ContextKey = "user"

// RequireAuth validates the Bearer access token and injects the resolved
// user into the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				s.writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "Not authenticated"})
				return
			}

			user, err := s.auth.Authenticate(r.Context(), rawToken)
			if err != nil {
				s.writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// currentUser returns the user RequireAuth stored in the context.
func currentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(ContextKeyUser).(*models.User)
	return user, ok
}
