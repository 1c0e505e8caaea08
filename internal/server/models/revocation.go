package models

import "time"

// RevocationEntry marks one exact encoded token as unusable before its expiry.
type RevocationEntry struct {
	Token     string
	UserID    int64
	RevokedAt time.Time
	// ExpiresAt is the revoked token's own expiry; nil when unknown.
	ExpiresAt *time.Time
}
