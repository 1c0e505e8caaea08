// Package seed creates or resets user accounts out-of-band. The server itself
// never writes users.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
)

var ErrEmptyInput = errors.New("username and password must not be empty")

type Seeder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
}

func NewSeeder(db *sql.DB, m repomanager.RepositoryManager, h auth.PasswordHasher) *Seeder {
	return &Seeder{db: db, repomanager: m, hasher: h}
}

// Upsert creates username with password, or replaces the password hash when
// the user exists. It reports whether a new user was created.
func (s *Seeder) Upsert(ctx context.Context, username string, password []byte) (bool, error) {
	if username == "" || len(password) == 0 {
		return false, ErrEmptyInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	created := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetUserByLogin(ctx, username)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			if _, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: string(hash)}); err != nil {
				return err
			}
			created = true
			return nil
		}

		return repo.UpdatePasswordHash(ctx, user.ID, string(hash))
	})
	if err != nil {
		return false, fmt.Errorf("seed user: %w", err)
	}
	return created, nil
}
