package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/mfasecrets"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errStore = errors.New("store unavailable")

// brokenRepoManager returns repositories that fail every call.
type brokenRepoManager struct{}

func (brokenRepoManager) RunMigrations(context.Context, *sql.DB) error { return errStore }
func (brokenRepoManager) Users(dbx.DBTX) users.Repository              { return brokenRepo{} }
func (brokenRepoManager) Revocations(dbx.DBTX) revocations.Repository  { return brokenRepo{} }
func (brokenRepoManager) MFASecrets(dbx.DBTX) mfasecrets.Repository    { return brokenSecrets{} }

type brokenRepo struct{}

func (brokenRepo) Create(context.Context, *models.User) (*models.User, error) { return nil, errStore }
func (brokenRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, errStore
}
func (brokenRepo) GetUserByIDAndLogin(context.Context, int64, string) (*models.User, error) {
	return nil, errStore
}
func (brokenRepo) UpdatePasswordHash(context.Context, int64, string) error { return errStore }
func (brokenRepo) Revoke(context.Context, *models.RevocationEntry) error   { return errStore }
func (brokenRepo) IsRevoked(context.Context, string) (bool, error)         { return false, errStore }
func (brokenRepo) PurgeExpired(context.Context, time.Time) (int64, error)  { return 0, errStore }

type brokenSecrets struct{}

func (brokenSecrets) Create(context.Context, *models.MFASecret) (*models.MFASecret, error) {
	return nil, errStore
}
func (brokenSecrets) FindLatest(context.Context, int64) (*models.MFASecret, error) {
	return nil, errStore
}

type fixture struct {
	rm          *repomanager.InMemoryRepositoryManager
	hasher      auth.PasswordHasher
	tokens      *auth.TokenService
	verifier    *auth.TOTPVerifier
	credentials *CredentialStore
	ledger      *RevocationLedger
	auth        *AuthService
	mfa         *MFAService
	alice       *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		rm:       repomanager.NewInMemoryRepositoryManager(),
		hasher:   auth.BcryptHasher{Cost: bcrypt.MinCost},
		verifier: auth.NewTOTPVerifier(auth.WithQRSize(64)),
	}

	var err error
	f.tokens, err = auth.NewTokenService([]byte("test-secret"))
	require.NoError(t, err)

	f.credentials = NewCredentialStore(nil, f.rm, f.hasher, time.Second)
	f.ledger = NewRevocationLedger(nil, f.rm, time.Second)
	f.auth = NewAuthService(f.credentials, f.tokens, f.ledger)
	f.mfa = NewMFAService(nil, f.rm, f.credentials, f.verifier, f.tokens, time.Second)

	hash, err := f.hasher.Hash([]byte("hunter2"))
	require.NoError(t, err)
	f.alice, err = f.rm.Users(nil).Create(context.Background(), &models.User{UserName: "alice", PasswordHash: string(hash)})
	require.NoError(t, err)

	return f
}
