package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrNotJWT is returned for opaque tokens that carry no inspectable claims.
var ErrNotJWT = errors.New("token is not a JWT")

// Introspection is what the client can learn about a bearer token without the
// signing key. It is advisory: the backend remains the authority.
type Introspection struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token has no exp claim
}

// Expired reports whether the token carries an exp claim in the past.
func (i Introspection) Expired() bool {
	return !i.ExpiresAt.IsZero() && !NowTimeFunc().Before(i.ExpiresAt)
}

// Inspect decodes the claims of a JWT without verifying its signature.
func Inspect(rawToken string) (Introspection, error) {
	rawToken = strings.TrimSpace(rawToken)
	if strings.Count(rawToken, ".") != 2 {
		return Introspection{}, ErrNotJWT
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return Introspection{}, fmt.Errorf("[token Inspect] failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Introspection{}, errors.New("[token Inspect] error extracting claims")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)

	var result Introspection
	result.Subject = sub
	result.Email = email
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		result.IssuedAt = iat.Time
	}
	return result, nil
}

// IsExpired is true only for a decodable JWT whose exp has passed. Opaque or
// undecodable tokens are left for the backend to judge.
func IsExpired(rawToken string) bool {
	info, err := Inspect(rawToken)
	if err != nil {
		return false
	}
	return info.Expired()
}
