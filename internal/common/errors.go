// Package common defines shared constants and sentinel errors used across
// tokenkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors, mapped onto HTTP status codes by the REST layer.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorBadRequest   = errors.New("bad request")

	// Token errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")

	// Startup errors.
	ErrMissingSigningKey = errors.New("signing key is not configured")
)
