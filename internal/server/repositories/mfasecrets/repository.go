// Package mfasecrets stores per-user TOTP secret history.
package mfasecrets

import (
	"context"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

// Repository appends secrets and returns the active one for a user.
type Repository interface {
	// Create appends a new secret row and fills in its ID and CreatedAt.
	// An unknown user yields common.ErrorNotFound.
	Create(ctx context.Context, secret *models.MFASecret) (*models.MFASecret, error)

	// FindLatest returns the most recently created secret for the user or
	// common.ErrorNotFound when the user never enrolled.
	FindLatest(ctx context.Context, userID int64) (*models.MFASecret, error)
}
