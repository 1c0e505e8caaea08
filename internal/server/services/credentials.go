package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
)

// CredentialStore looks users up and checks passwords against stored hashes.
type CredentialStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	timeout     time.Duration

	dummyOnce sync.Once
	dummyHash []byte
}

func NewCredentialStore(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, timeout time.Duration) *CredentialStore {
	return &CredentialStore{db: db, repomanager: m, hasher: hasher, timeout: timeout}
}

// Lookup returns the user with the given username or common.ErrorNotFound.
func (s *CredentialStore) Lookup(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := readCtx(ctx, s.timeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalErr("lookup user", err)
	}
	return user, nil
}

// Verify returns the user when password matches the stored hash. Unknown
// users and wrong passwords both yield common.ErrorUnauthorized; a hash
// comparison runs in either case.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummy(), []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if err := s.hasher.Compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// Confirm checks that a user with both the given id and username still exists.
func (s *CredentialStore) Confirm(ctx context.Context, id int64, username string) (*models.User, error) {
	ctx, cancel := readCtx(ctx, s.timeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetUserByIDAndLogin(ctx, id, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalErr("confirm user", err)
	}
	return user, nil
}

func (s *CredentialStore) dummy() []byte {
	s.dummyOnce.Do(func() {
		pw := common.GenerateRandByteArray(16)
		defer common.WipeByteArray(pw)
		s.dummyHash, _ = s.hasher.Hash(pw)
	})
	return s.dummyHash
}
