package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
)

// MFAService enrolls TOTP secrets and performs the step-up exchange.
type MFAService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials *CredentialStore
	verifier    *auth.TOTPVerifier
	tokens      *auth.TokenService
	timeout     time.Duration
}

func NewMFAService(db *sql.DB, m repomanager.RepositoryManager, c *CredentialStore,
	v *auth.TOTPVerifier, t *auth.TokenService, timeout time.Duration) *MFAService {
	return &MFAService{db: db, repomanager: m, credentials: c, verifier: v, tokens: t, timeout: timeout}
}

// Enrollment is the outcome of Enroll.
type Enrollment struct {
	Secret string
	URI    string
	QR     []byte
}

// Enroll appends a fresh secret for the user and returns its provisioning
// URI rendered as a PNG QR code. The username is the provisioning identity.
// Earlier secrets stay stored but are no longer resolved.
func (s *MFAService) Enroll(ctx context.Context, userID int64, username string) (*Enrollment, error) {
	if _, err := s.credentials.Confirm(ctx, userID, username); err != nil {
		return nil, err
	}

	secret := s.verifier.GenerateSecret()
	if err := s.associate(ctx, userID, secret); err != nil {
		return nil, err
	}

	uri := s.verifier.ProvisioningURI(username, secret)
	qr, err := s.verifier.QRCode(uri)
	if err != nil {
		return nil, internalErr("render qr", err)
	}
	return &Enrollment{Secret: secret, URI: uri, QR: qr}, nil
}

// ResolveActive returns the most recently enrolled secret of the user or
// common.ErrorNotFound.
func (s *MFAService) ResolveActive(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := readCtx(ctx, s.timeout)
	defer cancel()

	secret, err := s.repomanager.MFASecrets(s.db).FindLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", internalErr("resolve mfa secret", err)
	}
	return secret.Secret, nil
}

// StepUp checks code against the active secret and, on success, issues a
// fresh token for the same identity carrying the mfa claim.
func (s *MFAService) StepUp(ctx context.Context, claims *auth.Claims, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", common.ErrorBadRequest
	}

	secret, err := s.ResolveActive(ctx, claims.ID)
	if err != nil {
		return "", err
	}

	if !s.verifier.Check(code, secret) {
		return "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(auth.Claims{ID: claims.ID, Username: claims.Username, MFA: true})
	if err != nil {
		return "", internalErr("issue token", err)
	}
	return token, nil
}

func (s *MFAService) associate(ctx context.Context, userID int64, secret string) error {
	ctx, cancel := writeCtx(ctx, s.timeout)
	defer cancel()

	_, err := s.repomanager.MFASecrets(s.db).Create(ctx, &models.MFASecret{UserID: userID, Secret: secret})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internalErr("store mfa secret", err)
	}
	return nil
}
