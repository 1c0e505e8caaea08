package repomanager

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/mfasecrets"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps all state in process memory. The DBTX
// argument of the factories is ignored; every call shares one store.
type InMemoryRepositoryManager struct {
	store *memStore
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: &memStore{
		users:   map[int64]models.User{},
		revoked: map[string]models.RevocationEntry{},
	}}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return memUsers{m.store}
}

func (m *InMemoryRepositoryManager) Revocations(db dbx.DBTX) revocations.Repository {
	return memRevocations{m.store}
}

func (m *InMemoryRepositoryManager) MFASecrets(db dbx.DBTX) mfasecrets.Repository {
	return memSecrets{m.store}
}

type memStore struct {
	mu       sync.RWMutex
	users    map[int64]models.User
	lastUser int64
	revoked  map[string]models.RevocationEntry
	secrets  []models.MFASecret
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.UserName == user.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.s.lastUser++
	user.ID = r.s.lastUser
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = *user
	return user, nil
}

func (r memUsers) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.UserName == login {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetUserByIDAndLogin(ctx context.Context, id int64, login string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok || u.UserName != login {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r memUsers) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

type memRevocations struct{ s *memStore }

func (r memRevocations) Revoke(ctx context.Context, entry *models.RevocationEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.revoked[entry.Token]; ok {
		return nil
	}
	e := *entry
	if e.RevokedAt.IsZero() {
		e.RevokedAt = time.Now()
	}
	r.s.revoked[e.Token] = e
	return nil
}

func (r memRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.revoked[token]
	return ok, nil
}

func (r memRevocations) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for tok, e := range r.s.revoked {
		if e.ExpiresAt != nil && e.ExpiresAt.Before(before) {
			delete(r.s.revoked, tok)
			n++
		}
	}
	return n, nil
}

type memSecrets struct{ s *memStore }

func (r memSecrets) Create(ctx context.Context, secret *models.MFASecret) (*models.MFASecret, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[secret.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	secret.ID = int64(len(r.s.secrets) + 1)
	secret.CreatedAt = time.Now()
	r.s.secrets = append(r.s.secrets, *secret)
	return secret, nil
}

// FindLatest scans from the end; rows are appended in creation order.
func (r memSecrets) FindLatest(ctx context.Context, userID int64) (*models.MFASecret, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for i := len(r.s.secrets) - 1; i >= 0; i-- {
		if r.s.secrets[i].UserID == userID {
			s := r.s.secrets[i]
			return &s, nil
		}
	}
	return nil, common.ErrorNotFound
}
