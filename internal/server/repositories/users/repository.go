// Package users declares the server-side repository contract for user
// accounts and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

// Repository is the read side the server needs plus the writes used by the
// seed tool.
type Repository interface {
	// Create inserts a user and returns it with ID and CreatedAt set.
	// A taken username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the user with the given username or common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// GetUserByIDAndLogin returns the user matching both id and username or
	// common.ErrorNotFound.
	GetUserByIDAndLogin(ctx context.Context, id int64, login string) (*models.User, error)

	// UpdatePasswordHash replaces the stored hash; unknown ids yield common.ErrorNotFound.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
