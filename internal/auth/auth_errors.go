package auth

import "errors"

var (
	InvalidStateErr        = errors.New("invalid state parameter")
	StateExpiredErr        = errors.New("state parameter expired")
	UpstreamAuthErr        = errors.New("upstream authentication failed")
	TokenExpiredErr        = errors.New("token has expired")
	InvalidTokenErr        = errors.New("invalid token")
	MalformedTokenErr      = errors.New("invalid token format")
	UserNotFoundErr        = errors.New("user not found")
	UserInactiveErr        = errors.New("inactive user")
	InvalidRefreshTokenErr = errors.New("invalid or expired refresh token")
)
