// Package sweets declares the repository contract for catalog items.
package sweets

import (
	"context"

	"github.com/sweetshop/backend/internal/server/models"
)

// SearchFilter narrows a catalog search. Zero values mean "no constraint".
type SearchFilter struct {
	Name          string
	CategoryID    string
	MinPrice      *float64
	MaxPrice      *float64
	OnlyAvailable bool
}

// Repository defines persistence operations for sweets.
type Repository interface {
	// Create inserts a sweet and fills in its timestamps.
	Create(ctx context.Context, sweet *models.Sweet) (*models.Sweet, error)

	// GetByID returns the sweet or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Sweet, error)

	// List returns all sweets ordered by name.
	List(ctx context.Context) ([]*models.Sweet, error)

	// ListByCategory returns all sweets in the given category.
	ListByCategory(ctx context.Context, categoryID string) ([]*models.Sweet, error)

	// Search applies the filter's constraints in the database.
	Search(ctx context.Context, filter SearchFilter) ([]*models.Sweet, error)

	// Update rewrites the mutable fields; common.ErrorNotFound when absent.
	Update(ctx context.Context, sweet *models.Sweet) error

	// Delete removes the sweet; common.ErrorNotFound when absent.
	Delete(ctx context.Context, id string) error

	// DecrementQuantity atomically subtracts n from stock, refusing to go
	// negative: the conditional UPDATE matches only when quantity >= n, so of
	// two concurrent purchases racing over the last items, one fails with
	// common.ErrInsufficientStock. Returns the remaining quantity.
	DecrementQuantity(ctx context.Context, id string, n int) (int, error)

	// IncrementQuantity adds n to stock and returns the new quantity;
	// common.ErrorNotFound when absent.
	IncrementQuantity(ctx context.Context, id string, n int) (int, error)

	// ListLowStock returns sweets with quantity at or below threshold,
	// lowest stock first. Sweets already at zero are excluded; those are
	// reported by ListOutOfStock.
	ListLowStock(ctx context.Context, threshold int) ([]*models.Sweet, error)

	// ListTopSelling returns up to limit sweets with the highest stock counts.
	ListTopSelling(ctx context.Context, limit int) ([]*models.Sweet, error)

	// ListOutOfStock returns sweets with zero quantity.
	ListOutOfStock(ctx context.Context) ([]*models.Sweet, error)

	// SetImageURL stores the image location for a sweet.
	SetImageURL(ctx context.Context, id string, imageURL string) error

	// CountByCategory reports how many sweets reference the category; used to
	// block deleting a category that is still in use.
	CountByCategory(ctx context.Context, categoryID string) (int64, error)

	// Count returns the number of sweets; used by the seed initializer.
	Count(ctx context.Context) (int64, error)
}
