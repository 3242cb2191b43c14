// Package provider implements the Google OAuth2 client used by the login
// flow: building the authorization URL and exchanging an authorization code
// for profile claims.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Google OAuth endpoints.
const (
	GoogleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenURL    = "https://accounts.google.com/o/oauth2/token"
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// ErrUpstream marks any failure talking to the identity provider, including
// a profile response without an email claim. Callers surface it as an
// authentication failure, not a server error.
var ErrUpstream = fmt.Errorf("upstream authentication failed")

// Profile holds the claims the callback needs from the provider.
type Profile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleClient performs the two-step exchange: authorization code for an
// access token, then access token for userinfo claims.
type GoogleClient struct {
	oauth       oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

type Option func(*GoogleClient)

// WithEndpoints overrides the provider endpoints. Empty strings keep the
// Google defaults.
func WithEndpoints(authURL, tokenURL, userInfoURL string) Option {
	return func(c *GoogleClient) {
		if authURL != "" {
			c.oauth.Endpoint.AuthURL = authURL
		}
		if tokenURL != "" {
			c.oauth.Endpoint.TokenURL = tokenURL
		}
		if userInfoURL != "" {
			c.userInfoURL = userInfoURL
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *GoogleClient) {
		c.httpClient = client
	}
}

func NewGoogleClient(clientID, clientSecret, redirectURI string, options ...Option) *GoogleClient {
	c := &GoogleClient{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  GoogleAuthURL,
				TokenURL: GoogleTokenURL,
			},
		},
		userInfoURL: GoogleUserInfoURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// AuthorizationURL builds the provider's authorization endpoint URL with the
// client id, the requested scopes, the redirect target and the given state,
// so the provider can echo the state back unmodified.
func (c *GoogleClient) AuthorizationURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// FetchProfile exchanges the authorization code for an access token, then
// fetches the userinfo claims with it. Every failure, including a missing
// email claim, wraps ErrUpstream.
func (c *GoogleClient) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo request failed with status %d", ErrUpstream, resp.StatusCode)
	}

	profile := &Profile{}
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, fmt.Errorf("%w: decoding userinfo: %v", ErrUpstream, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: profile response has no email claim", ErrUpstream)
	}
	return profile, nil
}
