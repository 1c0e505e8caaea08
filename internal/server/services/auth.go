package services

import (
	"context"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
)

// AuthService handles login and logout.
type AuthService struct {
	credentials *CredentialStore
	tokens      *auth.TokenService
	ledger      *RevocationLedger
}

func NewAuthService(c *CredentialStore, t *auth.TokenService, l *RevocationLedger) *AuthService {
	return &AuthService{credentials: c, tokens: t, ledger: l}
}

// Login verifies the password and issues a base (non-elevated) token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(auth.Claims{ID: user.ID, Username: user.UserName})
	if err != nil {
		return "", internalErr("issue token", err)
	}
	return token, nil
}

// Logout revokes exactly the presented token. Other tokens of the same user
// stay valid.
func (s *AuthService) Logout(ctx context.Context, token string, claims *auth.Claims) error {
	return s.ledger.Revoke(ctx, token, claims.ID, claims.ExpiresAtTime())
}
