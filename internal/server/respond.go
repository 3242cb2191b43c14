package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopworks/go-commerce-server/internal/auth"
	"github.com/shopworks/go-commerce-server/internal/common"
)

// errorBody matches the error envelope clients already parse.
type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, detail := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	s.writeJSON(w, status, errorBody{Detail: detail})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.InvalidStateErr):
		return http.StatusBadRequest, "Invalid state parameter"
	case errors.Is(err, auth.StateExpiredErr):
		return http.StatusBadRequest, "State parameter expired"
	case errors.Is(err, auth.UpstreamAuthErr):
		return http.StatusUnauthorized, "Upstream authentication failed"
	case errors.Is(err, auth.TokenExpiredErr):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, auth.MalformedTokenErr):
		return http.StatusUnauthorized, "Invalid token format"
	case errors.Is(err, auth.InvalidTokenErr):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, auth.UserNotFoundErr):
		return http.StatusUnauthorized, "User not found"
	case errors.Is(err, auth.InvalidRefreshTokenErr):
		return http.StatusUnauthorized, "Invalid or expired refresh token"
	case errors.Is(err, auth.UserInactiveErr):
		return http.StatusForbidden, "Inactive user"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
