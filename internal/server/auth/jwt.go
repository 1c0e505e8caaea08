// Package auth holds the credential primitives of the server: signed access
// tokens, password hashing and TOTP verification.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = time.Hour

// Claims is the payload of an access token. MFA is set only on tokens issued
// after a successful TOTP step-up.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	MFA      bool   `json:"mfa,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens with a key fixed at
// construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type TokenOption func(*TokenService)

// WithTTL overrides the lifetime used by Issue.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) { s.ttl = ttl }
}

// WithClock replaces time.Now for both issuing and verification.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, common.ErrMissingSigningKey
	}

	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

func (s *TokenService) Issue(claims Claims) (string, error) {
	return s.IssueWithTTL(claims, s.ttl)
}

// IssueWithTTL signs the identity part of claims with iat set to now (whole
// seconds), exp to iat+ttl and a fresh jti. Registered claims passed in are
// replaced, so two tokens never share a signature.
func (s *TokenService) IssueWithTTL(claims Claims, ttl time.Duration) (string, error) {
	iat := s.now().Truncate(time.Second)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks encoding, signature and expiry. A token is rejected at the
// exact second of its exp.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, common.ErrInvalidToken
		}
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ExpiresAtTime returns the exp claim, or nil when absent.
func (c *Claims) ExpiresAtTime() *time.Time {
	if c.ExpiresAt == nil {
		return nil
	}
	t := c.ExpiresAt.Time
	return &t
}
