// Package auth implements the Google OAuth login flow and the token
// lifecycle built on top of it.
package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopworks/go-commerce-server/internal/authstate"
	"github.com/shopworks/go-commerce-server/internal/common"
	"github.com/shopworks/go-commerce-server/internal/models"
	"github.com/shopworks/go-commerce-server/internal/provider"
	"github.com/shopworks/go-commerce-server/internal/repositories/users"
	"github.com/shopworks/go-commerce-server/internal/token"
)

const DefaultRefreshTokenTTL = 30 * 24 * time.Hour

// StateStore issues and consumes single-use CSRF state tokens.
type StateStore interface {
	Issue() (string, error)
	ValidateAndConsume(state string) error
}

// Provider exchanges an authorization code for the third-party profile.
type Provider interface {
	AuthorizationURL(state string) string
	FetchProfile(ctx context.Context, code string) (*provider.Profile, error)
}

// TokenPair is the response body of every token-issuing endpoint. The
// refresh token is opaque; the access token is a signed JWT.
type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	TokenType             string `json:"token_type"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

// AuthService drives the login, refresh and request-authentication flows.
type AuthService struct {
	states     StateStore
	provider   Provider
	issuer     *token.Issuer
	users      users.Repository
	refreshTTL time.Duration
	nowTime    func() time.Time
}

type AuthServiceOption func(*AuthService)

// WithRefreshTokenTTL overrides the refresh token lifetime.
func WithRefreshTokenTTL(ttl time.Duration) AuthServiceOption {
	return func(as *AuthService) {
		as.refreshTTL = ttl
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthServiceOption {
	return func(as *AuthService) {
		as.nowTime = nowFunc
	}
}

func NewAuthService(
	states StateStore,
	oauthProvider Provider,
	issuer *token.Issuer,
	userRepo users.Repository,
	options ...AuthServiceOption,
) (*AuthService, error) {
	if states == nil {
		return nil, errors.New("[NewAuthService] state store is required")
	}
	if oauthProvider == nil {
		return nil, errors.New("[NewAuthService] provider is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewAuthService] issuer is required")
	}
	if userRepo == nil {
		return nil, errors.New("[NewAuthService] user repo is required")
	}

	authService := &AuthService{
		states:     states,
		provider:   oauthProvider,
		issuer:     issuer,
		users:      userRepo,
		refreshTTL: DefaultRefreshTokenTTL,
		nowTime:    time.Now,
	}

	for _, opt := range options {
		opt(authService)
	}

	return authService, nil
}

// Login issues a fresh CSRF state and returns the provider authorization
// URL together with the state the provider will echo back.
func (as *AuthService) Login() (string, string, error) {
	state, err := as.states.Issue()
	if err != nil {
		return "", "", errors.Wrap(err, "[AuthService.Login] states.Issue")
	}
	return as.provider.AuthorizationURL(state), state, nil
}

// Callback completes the OAuth flow: it consumes the state, exchanges the
// code for a profile, upserts the user keyed by email and returns a fresh
// token pair. The state is spent even when a later step fails.
func (as *AuthService) Callback(ctx context.Context, state, code string) (*TokenPair, *models.User, error) {
	if err := as.states.ValidateAndConsume(state); err != nil {
		if errors.Is(err, authstate.ErrStateExpired) {
			return nil, nil, StateExpiredErr
		}
		return nil, nil, InvalidStateErr
	}

	profile, err := as.provider.FetchProfile(ctx, code)
	if err != nil {
		return nil, nil, errors.Wrap(UpstreamAuthErr, err.Error())
	}

	user, err := as.getOrCreateUser(ctx, profile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[AuthService.Callback] getOrCreateUser")
	}
	if !user.IsActive {
		return nil, nil, UserInactiveErr
	}

	pair, err := as.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[AuthService.Callback] issueTokens")
	}
	return pair, user, nil
}

// Refresh rotates the refresh token: the presented value is matched against
// the stored one, and a new pair replaces it. The old value stops working
// immediately.
func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, InvalidRefreshTokenErr
	}

	user, err := as.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, InvalidRefreshTokenErr
		}
		return nil, errors.Wrap(err, "[AuthService.Refresh] GetByRefreshToken")
	}
	if !user.IsActive {
		return nil, UserInactiveErr
	}

	pair, err := as.issueTokens(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Refresh] issueTokens")
	}
	return pair, nil
}

// Authenticate resolves a bearer access token to its active user.
func (as *AuthService) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	userID, err := as.issuer.VerifyAccessToken(rawToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenExpired):
			return nil, TokenExpiredErr
		case errors.Is(err, token.ErrTokenMalformed):
			return nil, MalformedTokenErr
		default:
			return nil, InvalidTokenErr
		}
	}

	user, err := as.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, UserNotFoundErr
		}
		return nil, errors.Wrap(err, "[AuthService.Authenticate] GetByID")
	}
	if !user.IsActive {
		return nil, UserInactiveErr
	}
	return user, nil
}

// getOrCreateUser upserts by email. Name and picture always track the
// latest profile the provider returned.
func (as *AuthService) getOrCreateUser(ctx context.Context, profile *provider.Profile) (*models.User, error) {
	user, err := as.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		user.Name = profile.Name
		user.Picture = profile.Picture
		if err := as.users.Update(ctx, user); err != nil {
			return nil, errors.Wrap(err, "users.Update")
		}
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, errors.Wrap(err, "users.GetByEmail")
	}

	return as.users.Create(ctx, &models.User{
		Email:    profile.Email,
		Name:     profile.Name,
		Picture:  profile.Picture,
		IsActive: true,
	})
}

func (as *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := as.issuer.MintAccessToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "MintAccessToken")
	}

	refreshToken, err := token.MintRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "MintRefreshToken")
	}

	expiresAt := as.nowTime().Add(as.refreshTTL)
	if err := as.users.UpdateRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, errors.Wrap(err, "UpdateRefreshToken")
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(as.issuer.AccessTokenTTL().Seconds()),
		RefreshTokenExpiresIn: int64(as.refreshTTL.Seconds()),
	}, nil
}
