// Package authz implements the per-request authorization decision as a
// short-circuiting chain of stages: extract the bearer token, verify it,
// re-confirm the identity it names, and optionally check revocation and
// elevation. The first failing stage ends the chain.
package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type IdentityConfirmer interface {
	Confirm(ctx context.Context, id int64, username string) (*models.User, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Result is what an allowed request carries downstream.
type Result struct {
	Token  string
	Claims *auth.Claims
}

type Pipeline struct {
	tokens     TokenVerifier
	identities IdentityConfirmer
	revocation RevocationChecker
	elevation  bool
}

type Option func(*Pipeline)

// WithRevocationCheck adds the revocation stage after identity confirmation.
func WithRevocationCheck(r RevocationChecker) Option {
	return func(p *Pipeline) { p.revocation = r }
}

// RequireElevation rejects tokens not issued by a successful MFA step-up.
func RequireElevation() Option {
	return func(p *Pipeline) { p.elevation = true }
}

func New(tokens TokenVerifier, identities IdentityConfirmer, opts ...Option) *Pipeline {
	p := &Pipeline{tokens: tokens, identities: identities}
	for _, o := range opts {
		o(p)
	}
	return p
}

// With returns a copy of p with extra options applied.
func (p *Pipeline) With(opts ...Option) *Pipeline {
	cp := *p
	for _, o := range opts {
		o(&cp)
	}
	return &cp
}

// Authorize runs the chain against the raw Authorization header value.
func (p *Pipeline) Authorize(ctx context.Context, header string) (*Result, *Rejection) {
	token, ok := ExtractBearer(header)
	if !ok {
		return nil, reject(StageExtractToken, Unauthenticated, 0, common.ErrorUnauthorized)
	}

	claims, err := p.tokens.Verify(token)
	if err != nil {
		return nil, reject(StageVerifyToken, Forbidden, 0, err)
	}

	if _, err := p.identities.Confirm(ctx, claims.ID, claims.Username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(StageConfirmIdentity, Forbidden, claims.ID, err)
		}
		return nil, reject(StageConfirmIdentity, Internal, claims.ID, err)
	}

	if p.revocation != nil {
		revoked, err := p.revocation.IsRevoked(ctx, token)
		if err != nil {
			return nil, reject(StageCheckRevocation, Internal, claims.ID, err)
		}
		if revoked {
			return nil, reject(StageCheckRevocation, Unauthenticated, claims.ID, common.ErrorUnauthorized)
		}
	}

	if p.elevation && !claims.MFA {
		return nil, reject(StageCheckElevation, Forbidden, claims.ID, common.ErrorForbidden)
	}

	return &Result{Token: token, Claims: claims}, nil
}

// ExtractBearer returns the token of a "Bearer <token>" header value. The
// scheme is matched case-insensitively.
func ExtractBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
