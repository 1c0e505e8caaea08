package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
)

// RevocationLedger is the durable set of tokens rejected before their expiry.
//
// Enforcement is eventual: a request whose check ran before Revoke committed
// may still complete with the token.
type RevocationLedger struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	timeout     time.Duration
}

func NewRevocationLedger(db *sql.DB, m repomanager.RepositoryManager, timeout time.Duration) *RevocationLedger {
	return &RevocationLedger{db: db, repomanager: m, timeout: timeout}
}

// Revoke records token; revoking it again is a no-op.
func (l *RevocationLedger) Revoke(ctx context.Context, token string, userID int64, expiresAt *time.Time) error {
	ctx, cancel := writeCtx(ctx, l.timeout)
	defer cancel()

	entry := &models.RevocationEntry{
		Token:     token,
		UserID:    userID,
		RevokedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	if err := l.repomanager.Revocations(l.db).Revoke(ctx, entry); err != nil {
		return internalErr("revoke token", err)
	}
	return nil
}

func (l *RevocationLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := readCtx(ctx, l.timeout)
	defer cancel()

	revoked, err := l.repomanager.Revocations(l.db).IsRevoked(ctx, token)
	if err != nil {
		return false, internalErr("check revocation", err)
	}
	return revoked, nil
}

// PurgeExpired drops entries for tokens that expired before the given time.
// Such tokens fail verification on their own.
func (l *RevocationLedger) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := writeCtx(ctx, l.timeout)
	defer cancel()

	n, err := l.repomanager.Revocations(l.db).PurgeExpired(ctx, before)
	if err != nil {
		return 0, internalErr("purge revocations", err)
	}
	return n, nil
}

// RunJanitor purges expired entries every interval until ctx is done.
func (l *RevocationLedger) RunJanitor(ctx context.Context, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := l.PurgeExpired(ctx, now)
			if err != nil {
				logger.Error(ctx, "revocation purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "expired revocations purged", "count", n)
			}
		}
	}
}
