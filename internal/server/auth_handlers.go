package server

import (
	"encoding/json"
	"net/http"
)

type googleLoginResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// GoogleLoginHandler issues the CSRF state and hands the client the URL of
// Google's consent screen.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loginURL, state, err := s.auth.Login()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, googleLoginResponse{
			AuthorizationURL: loginURL,
			State:            state,
		})
	}
}

// GoogleCallbackHandler completes the flow and returns the token pair.
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		code := r.URL.Query().Get("code")

		pair, _, err := s.auth.Callback(r.Context(), state, code)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, pair)
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshHandler rotates a refresh token into a new pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Invalid request body"})
			return
		}

		pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, pair)
	}
}
