package models

import "time"

// RefreshToken is a server-tracked, single-use session credential. The token
// value is an opaque random string; the row is deleted on rotation, logout,
// or by the expiry reaper. At most one row exists per user at any instant.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's expiry is in the past relative to now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
