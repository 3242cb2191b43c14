package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeProvider serves the token and userinfo endpoints the client talks to.
type fakeProvider struct {
	*httptest.Server

	tokenStatus    int
	userinfoStatus int
	profile        map[string]string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	f := &fakeProvider{
		tokenStatus:    http.StatusOK,
		userinfoStatus: http.StatusOK,
		profile: map[string]string{
			"sub":     "google-sub-1",
			"email":   "jane@example.com",
			"name":    "Jane Doe",
			"picture": "https://example.com/jane.png",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if f.tokenStatus != http.StatusOK {
			http.Error(w, "exchange rejected", f.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-access-token" {
			http.Error(w, "missing bearer", http.StatusUnauthorized)
			return
		}
		if f.userinfoStatus != http.StatusOK {
			http.Error(w, "userinfo rejected", f.userinfoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.profile)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *fakeProvider) client() *GoogleClient {
	return NewGoogleClient("client-id", "client-secret", "http://localhost/auth/google/callback",
		WithEndpoints(f.URL+"/authorize", f.URL+"/token", f.URL+"/userinfo"),
		WithHTTPClient(f.Client()),
	)
}

func TestAuthorizationURL(t *testing.T) {
	c := NewGoogleClient("client-id", "client-secret", "http://localhost/auth/google/callback")

	raw := c.AuthorizationURL("some-state")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	require.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	require.Equal(t, "client-id", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "some-state", q.Get("state"))
	require.Equal(t, "openid email profile", q.Get("scope"))
	require.Equal(t, "http://localhost/auth/google/callback", q.Get("redirect_uri"))
}

func TestFetchProfile(t *testing.T) {
	f := newFakeProvider(t)

	profile, err := f.client().FetchProfile(context.Background(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", profile.Email)
	require.Equal(t, "Jane Doe", profile.Name)
	require.Equal(t, "https://example.com/jane.png", profile.Picture)
}

func TestFetchProfileExchangeFails(t *testing.T) {
	f := newFakeProvider(t)
	f.tokenStatus = http.StatusBadRequest

	_, err := f.client().FetchProfile(context.Background(), "bad-code")
	require.ErrorIs(t, err, ErrUpstream)
}

func TestFetchProfileUserinfoFails(t *testing.T) {
	f := newFakeProvider(t)
	f.userinfoStatus = http.StatusInternalServerError

	_, err := f.client().FetchProfile(context.Background(), "auth-code")
	require.ErrorIs(t, err, ErrUpstream)
}

func TestFetchProfileMissingEmail(t *testing.T) {
	f := newFakeProvider(t)
	f.profile = map[string]string{"sub": "google-sub-1", "name": "No Email"}

	_, err := f.client().FetchProfile(context.Background(), "auth-code")
	require.ErrorIs(t, err, ErrUpstream)
	require.Contains(t, err.Error(), "email")
}
