// Package common defines shared constants and sentinel errors used across
// the sweetshop backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential check failures. Unknown email, bad password and a disabled
	// account all collapse into this one value so the caller cannot tell
	// them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Refresh token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Access token verification errors.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrWrongTokenType        = errors.New("wrong token type")

	// Catalog errors.
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCategoryInUse     = errors.New("category has sweets")

	// Login throttling.
	ErrRateLimited = errors.New("too many attempts")
)
