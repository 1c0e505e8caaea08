package models

import "time"

// MFASecret is one row of a user's append-only TOTP secret history. The most
// recently created row is the active one.
type MFASecret struct {
	ID        int64
	UserID    int64
	Secret    string
	CreatedAt time.Time
}
