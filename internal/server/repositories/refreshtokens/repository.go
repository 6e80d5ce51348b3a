// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/sweetshop/backend/internal/server/models"
)

// Repository defines operations for issuing, rotating, revoking and sweeping
// refresh tokens. A token value moves through exactly one lifecycle: created,
// then removed by rotation, revocation or expiry sweep.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns its
	// metadata, or common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteReturningUser removes the token row and returns its owner's user id
	// in one statement. When the row is already gone it returns
	// common.ErrorNotFound. Run inside a transaction, this is the atomic claim
	// that makes rotation single-use: of two concurrent callers presenting the
	// same value, exactly one gets the user id back.
	DeleteReturningUser(ctx context.Context, token string) (string, error)

	// Delete removes a refresh token by its token string. Deleting a
	// non-existent token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteAllByUser removes every refresh token owned by userID, enforcing
	// the single-active-token invariant before a new issue.
	DeleteAllByUser(ctx context.Context, userID string) error

	// DeleteExpired removes all tokens with expiry before now and reports how
	// many rows were deleted. Safe to call repeatedly and concurrently.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
