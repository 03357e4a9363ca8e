package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"golang.org/x/oauth2"
)

// Issuer is Google's OpenID Connect issuer.
const Issuer = "https://accounts.google.com"

// Response is the payload handed back by Google Identity Services after a
// user signs in. Only Credential, a signed ID token, is required.
type Response struct {
	Credential string `json:"credential"`
	ClientID   string `json:"clientId,omitempty"`
	SelectBy   string `json:"select_by,omitempty"`
}

// Credential extracts the opaque credential sent to the backend.
func Credential(resp Response) (string, error) {
	cred := strings.TrimSpace(resp.Credential)
	if cred == "" {
		return "", apperrors.ErrMissingCredential
	}
	return cred, nil
}

// ResponseFromToken builds a Response from an OAuth2 token obtained with the
// openid scope. Google places the ID token in the token's extra fields.
func ResponseFromToken(tok *oauth2.Token) (Response, error) {
	if tok == nil {
		return Response{}, apperrors.ErrMissingCredential
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return Response{}, fmt.Errorf("[google ResponseFromToken] no id_token field in oauth2 token: %w", apperrors.ErrMissingCredential)
	}
	return Response{Credential: rawIDToken, SelectBy: "oauth2"}, nil
}

// Claims are the ID token claims the client cares about.
type Claims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verifier checks Google ID tokens locally before they are sent to the
// backend. The backend still performs its own verification.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers Google's signing keys and returns a Verifier for
// tokens issued to clientID.
func NewVerifier(ctx context.Context, clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, errors.New("[google NewVerifier] client id is required")
	}
	provider, err := oidc.NewProvider(ctx, Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewVerifierWithKeySet builds a Verifier against a fixed key set. now may be
// nil to use the wall clock.
func NewVerifierWithKeySet(issuer, clientID string, keySet oidc.KeySet, now func() time.Time) *Verifier {
	return &Verifier{verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
		ClientID: clientID,
		Now:      now,
	})}
}

// Verify checks signature, issuer, audience and expiry of rawIDToken.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Claims{}, &apperrors.AuthenticationError{Reason: "google credential rejected", Cause: err}
	}
	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return Claims{}, fmt.Errorf("failed to parse claims: %w", err)
	}
	return claims, nil
}

// UnverifiedClaims decodes the claims of rawIDToken without checking its
// signature. Only the development backend uses it, when no client id is set.
func UnverifiedClaims(rawIDToken string) (Claims, error) {
	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawIDToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, &apperrors.AuthenticationError{Reason: "malformed google credential", Cause: err}
	}
	mc, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, errors.New("[google UnverifiedClaims] error extracting claims")
	}
	str := func(key string) string {
		v, _ := mc[key].(string)
		return v
	}
	verified, _ := mc["email_verified"].(bool)
	return Claims{
		Subject:       str("sub"),
		Email:         str("email"),
		EmailVerified: verified,
		Name:          str("name"),
		Picture:       str("picture"),
	}, nil
}
