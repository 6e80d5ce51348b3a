package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/server/models"
	"github.com/sweetshop/backend/internal/server/repositories/repomanager"
	"github.com/sweetshop/backend/internal/server/repositories/sweets"
)

// defaultTopSellingLimit caps the top-selling listing when the caller does
// not ask for a specific page size.
const defaultTopSellingLimit = 10

// SweetInput carries the client-supplied fields of a sweet.
type SweetInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	ImageURL    string
	CategoryID  string
}

// SweetService implements the catalog operations on sweets, including the
// stock movements triggered by purchases and restocks.
type SweetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewSweetService constructs a SweetService over the shared repositories.
func NewSweetService(db *sql.DB, m repomanager.RepositoryManager) *SweetService {
	return &SweetService{db: db, repomanager: m}
}

// Create adds a sweet to the catalog. The referenced category must exist.
func (s *SweetService) Create(ctx context.Context, input SweetInput) (*models.Sweet, error) {
	if _, err := s.repomanager.Categories(s.db).GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	sweet := &models.Sweet{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
	}
	created, err := s.repomanager.Sweets(s.db).Create(ctx, sweet)
	if err != nil {
		return nil, fmt.Errorf("error creating sweet: %v", err)
	}
	return created, nil
}

// Get returns a single sweet, or common.ErrorNotFound.
func (s *SweetService) Get(ctx context.Context, id string) (*models.Sweet, error) {
	return s.repomanager.Sweets(s.db).GetByID(ctx, id)
}

// List returns the whole catalog ordered by name.
func (s *SweetService) List(ctx context.Context) ([]*models.Sweet, error) {
	return s.repomanager.Sweets(s.db).List(ctx)
}

// ListByCategory returns the sweets of one category. The category must exist.
func (s *SweetService) ListByCategory(ctx context.Context, categoryID string) ([]*models.Sweet, error) {
	if _, err := s.repomanager.Categories(s.db).GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repomanager.Sweets(s.db).ListByCategory(ctx, categoryID)
}

// Search returns the sweets matching the filter.
func (s *SweetService) Search(ctx context.Context, filter sweets.SearchFilter) ([]*models.Sweet, error) {
	return s.repomanager.Sweets(s.db).Search(ctx, filter)
}

// Update rewrites a sweet's mutable fields. A changed category reference must
// point at an existing category.
func (s *SweetService) Update(ctx context.Context, id string, input SweetInput) (*models.Sweet, error) {
	repo := s.repomanager.Sweets(s.db)
	sweet, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != sweet.CategoryID {
		if _, err := s.repomanager.Categories(s.db).GetByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}
	sweet.Name = input.Name
	sweet.Description = input.Description
	sweet.Price = input.Price
	sweet.Quantity = input.Quantity
	sweet.ImageURL = input.ImageURL
	sweet.CategoryID = input.CategoryID
	if err := repo.Update(ctx, sweet); err != nil {
		return nil, err
	}
	return sweet, nil
}

// Delete removes a sweet from the catalog.
func (s *SweetService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Sweets(s.db).Delete(ctx, id)
}

// Purchase takes quantity units off the shelf. The decrement is conditional
// in the database, so overlapping purchases never drive stock negative: the
// caller that loses the race gets common.ErrInsufficientStock. Returns the
// remaining quantity.
func (s *SweetService) Purchase(ctx context.Context, id string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", common.ErrInsufficientStock)
	}
	return s.repomanager.Sweets(s.db).DecrementQuantity(ctx, id, quantity)
}

// Restock adds quantity units and returns the new stock level.
func (s *SweetService) Restock(ctx context.Context, id string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("restock quantity must be positive")
	}
	return s.repomanager.Sweets(s.db).IncrementQuantity(ctx, id, quantity)
}

// ListLowStock returns sweets at or below the threshold, lowest stock first.
func (s *SweetService) ListLowStock(ctx context.Context, threshold int) ([]*models.Sweet, error) {
	return s.repomanager.Sweets(s.db).ListLowStock(ctx, threshold)
}

// ListTopSelling returns up to limit of the best-stocked sweets. A
// non-positive limit falls back to a small default page.
func (s *SweetService) ListTopSelling(ctx context.Context, limit int) ([]*models.Sweet, error) {
	if limit <= 0 {
		limit = defaultTopSellingLimit
	}
	return s.repomanager.Sweets(s.db).ListTopSelling(ctx, limit)
}

// ListOutOfStock returns sweets with nothing left on the shelf.
func (s *SweetService) ListOutOfStock(ctx context.Context) ([]*models.Sweet, error) {
	return s.repomanager.Sweets(s.db).ListOutOfStock(ctx)
}

// SetImageURL records where the sweet's image is stored.
func (s *SweetService) SetImageURL(ctx context.Context, id, imageURL string) error {
	return s.repomanager.Sweets(s.db).SetImageURL(ctx, id, imageURL)
}
