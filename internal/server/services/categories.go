package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/server/models"
	"github.com/sweetshop/backend/internal/server/repositories/repomanager"
)

// CategoryService implements catalog category management.
type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewCategoryService constructs a CategoryService over the shared repositories.
func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m}
}

// Create adds a category. A duplicate name yields common.ErrorAlreadyExists.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*models.Category, error) {
	category := &models.Category{Name: name, Description: description}
	created, err := s.repomanager.Categories(s.db).Create(ctx, category)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a single category, or common.ErrorNotFound.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.repomanager.Categories(s.db).GetByID(ctx, id)
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.repomanager.Categories(s.db).List(ctx)
}

// Update renames a category or changes its description.
func (s *CategoryService) Update(ctx context.Context, id, name, description string) (*models.Category, error) {
	repo := s.repomanager.Categories(s.db)
	category, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	category.Description = description
	if err := repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category. A category still referenced by sweets cannot be
// deleted and yields common.ErrCategoryInUse.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	n, err := s.repomanager.Sweets(s.db).CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("error counting sweets in category: %v", err)
	}
	if n > 0 {
		return common.ErrCategoryInUse
	}
	return s.repomanager.Categories(s.db).Delete(ctx, id)
}
