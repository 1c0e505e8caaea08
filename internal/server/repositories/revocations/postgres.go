package revocations

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Revoke(ctx context.Context, entry *models.RevocationEntry) error {
	query := `
		INSERT INTO blacklist (token, user_id, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO NOTHING
	`
	revokedAt := entry.RevokedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query, entry.Token, entry.UserID, revokedAt, entry.ExpiresAt)
	if err != nil && !dbx.IsUniqueViolation(err) {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM blacklist WHERE token = $1)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM blacklist
		WHERE expires_at IS NOT NULL AND expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
