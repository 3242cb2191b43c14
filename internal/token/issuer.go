// Package token mints and verifies the two credentials the auth flow hands
// out: short-lived signed access tokens and long-lived opaque refresh tokens.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	// ErrTokenExpired is returned when a token's expiry is in the past.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned when the signature or format check fails.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenMalformed is returned when the subject claim is missing or
	// not numeric.
	ErrTokenMalformed = errors.New("malformed token subject")
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Issuer mints stateless access tokens bound to a user id and an absolute
// expiry. Access tokens are not revocable before expiry.
type Issuer struct {
	signer    Signer
	accessTTL time.Duration
}

func NewIssuer(signer Signer, accessTTL time.Duration) *Issuer {
	if accessTTL == 0 {
		accessTTL = 30 * time.Minute
	}
	return &Issuer{signer: signer, accessTTL: accessTTL}
}

// AccessTokenTTL reports the configured access token lifetime.
func (i *Issuer) AccessTokenTTL() time.Duration {
	return i.accessTTL
}

// MintAccessToken encodes {sub: userID, exp: now + TTL} with the configured
// signer.
func (i *Issuer) MintAccessToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": NowTimeFunc().Add(i.accessTTL).Unix(),
	}
	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Issuer.MintAccessToken")
	}
	return signed, nil
}

// VerifyAccessToken checks signature and expiry and returns the numeric
// subject. The error distinguishes expired, invalid and malformed tokens so
// the request gate can surface the right failure.
func (i *Issuer) VerifyAccessToken(raw string) (int64, error) {
	parsed, err := jwt.Parse(raw, i.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, errors.Wrapf(ErrTokenInvalid, "%v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return 0, ErrTokenMalformed
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	return userID, nil
}

// MintRefreshToken returns a 256-bit random opaque string. It carries no
// relation to any user until the caller persists it.
func MintRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "MintRefreshToken rand.Read")
	}
	return hex.EncodeToString(buf), nil
}
