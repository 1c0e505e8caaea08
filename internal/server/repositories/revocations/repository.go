// Package revocations declares the server-side contract for the token
// revocation ledger and its PostgreSQL implementation.
package revocations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

// Repository records revoked tokens and answers membership queries.
type Repository interface {
	// Revoke records the entry. Revoking an already revoked token is not an error.
	Revoke(ctx context.Context, entry *models.RevocationEntry) error

	// IsRevoked reports whether the exact token string has been recorded.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// PurgeExpired deletes entries whose token expired before the given time
	// and returns the number of rows removed.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
