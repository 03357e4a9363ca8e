package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrRevoked is returned by Verify for a token that was logged out.
var ErrRevoked = errors.New("token has been revoked")

// Creator issues HS256 bearer tokens. The development API uses it; the
// client never signs tokens itself.
type Creator struct {
	signer  Signer
	issuer  string
	expiry  time.Duration
	revoked RevocationList
}

type CreatorOption func(*Creator)

func WithRevocationList(list RevocationList) CreatorOption {
	return func(c *Creator) {
		c.revoked = list
	}
}

// NewCreator returns a Creator signing with secret.
func NewCreator(secret []byte, issuer string, expiry time.Duration, opts ...CreatorOption) (*Creator, error) {
	if len(secret) == 0 {
		return nil, errors.New("[token NewCreator] secret is required")
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	c := &Creator{
		signer:  NewHMACSigner(secret),
		issuer:  issuer,
		expiry:  expiry,
		revoked: NewInMemoryRevocationList(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateAccessToken signs a token for the given user id and email.
func (c *Creator) CreateAccessToken(userID, email string) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"iss":   c.issuer,
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(c.expiry).Unix(),
		"jti":   uuid.New().String(),
	}
	return c.signer.Sign(claims)
}

func (c *Creator) parse(rawToken string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	parsed, err := jwtlib.ParseWithClaims(rawToken, claims, c.signer.GetVerificationKey,
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// Verify checks the signature, expiry and revocation and returns the subject.
func (c *Creator) Verify(rawToken string) (string, error) {
	claims, err := c.parse(rawToken)
	if err != nil {
		return "", err
	}
	if jti, _ := claims["jti"].(string); jti != "" && c.revoked.IsRevoked(jti) {
		return "", ErrRevoked
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token missing sub claim")
	}
	return sub, nil
}

// Revoke rejects rawToken from now until it would have expired anyway.
func (c *Creator) Revoke(rawToken string) error {
	claims, err := c.parse(rawToken)
	if err != nil {
		return err
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return errors.New("token missing jti claim")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return errors.New("token missing exp claim")
	}
	c.revoked.Cleanup()
	return c.revoked.Add(jti, exp.Time)
}
