// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account able to log in. Created out-of-band; the server only
// reads it.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
