// Package categories declares the repository contract for catalog categories.
package categories

import (
	"context"

	"github.com/sweetshop/backend/internal/server/models"
)

// Repository defines persistence operations for categories.
type Repository interface {
	// Create inserts a category; a duplicate name yields common.ErrorAlreadyExists.
	Create(ctx context.Context, category *models.Category) (*models.Category, error)

	// GetByID returns the category or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Category, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]*models.Category, error)

	// Update rewrites name and description; common.ErrorNotFound when absent,
	// common.ErrorAlreadyExists when the new name collides.
	Update(ctx context.Context, category *models.Category) error

	// Delete removes the category; common.ErrorNotFound when absent.
	Delete(ctx context.Context, id string) error

	// Count returns the number of categories; used by the seed initializer.
	Count(ctx context.Context) (int64, error)
}
