// Package users declares the repository contract for principal accounts.
package users

import (
	"context"

	"github.com/sweetshop/backend/internal/server/models"
)

// Repository defines persistence operations for user accounts and their roles.
type Repository interface {
	// Create inserts the user and its role assignments. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with its roles, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with its roles, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// List returns all users with their roles.
	List(ctx context.Context) ([]*models.User, error)

	// SetEnabled flips the account's enabled flag; common.ErrorNotFound when
	// no such user exists.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// Count returns the number of users; used by the seed initializer.
	Count(ctx context.Context) (int64, error)
}
