package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/dbx"
	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/server/auth"
	"github.com/sweetshop/backend/internal/server/config"
	"github.com/sweetshop/backend/internal/server/models"
	"github.com/sweetshop/backend/internal/server/repositories/repomanager"
)

// Default administrator account created on first startup.
const (
	seedAdminEmail    = "admin@sweetshop.com"
	seedAdminPassword = "password"
)

// SeedAdminUser makes sure an administrator account exists so a fresh
// deployment is usable immediately. The account is only created when absent;
// later changes to it (password, enabled flag) are never overwritten.
func SeedAdminUser(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) error {
	repo := m.Users(db)

	_, err := repo.GetByEmail(ctx, seedAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error checking for admin user: %v", err)
	}

	hash, err := auth.HashPassword(seedAdminPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %v", err)
	}
	admin := &models.User{
		Email:        seedAdminEmail,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "User",
		Enabled:      true,
		Roles:        []string{models.RoleAdmin, models.RoleUser},
	}
	if err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, createErr := m.Users(tx).Create(ctx, admin)
		return createErr
	}); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil
		}
		return fmt.Errorf("error creating admin user: %v", err)
	}
	logger.Info(ctx, "admin user created", "email", seedAdminEmail)
	return nil
}

// SeedDemoCatalog fills an empty catalog with a few categories and sweets so
// the shop is browsable out of the box. It does nothing once either table has
// rows.
func SeedDemoCatalog(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) error {
	categoryRepo := m.Categories(db)
	sweetRepo := m.Sweets(db)

	nCategories, err := categoryRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("error counting categories: %v", err)
	}
	nSweets, err := sweetRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("error counting sweets: %v", err)
	}
	if nCategories > 0 || nSweets > 0 {
		return nil
	}

	demo := []struct {
		category models.Category
		sweets   []models.Sweet
	}{
		{
			category: models.Category{Name: "Chocolate", Description: "Cocoa based treats"},
			sweets: []models.Sweet{
				{Name: "Dark Truffle", Description: "70% cocoa truffle", Price: 2.50, Quantity: 40},
				{Name: "Milk Bar", Description: "Classic milk chocolate bar", Price: 1.80, Quantity: 60},
			},
		},
		{
			category: models.Category{Name: "Gummies", Description: "Chewy fruit sweets"},
			sweets: []models.Sweet{
				{Name: "Sour Worms", Description: "Sour sugar coated worms", Price: 1.20, Quantity: 80},
			},
		},
		{
			category: models.Category{Name: "Caramel", Description: "Butter and sugar"},
			sweets: []models.Sweet{
				{Name: "Salted Caramel Cube", Description: "Soft caramel with sea salt", Price: 0.90, Quantity: 100},
			},
		},
	}

	for _, d := range demo {
		category, err := categoryRepo.Create(ctx, &d.category)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				continue
			}
			return fmt.Errorf("error seeding category %q: %v", d.category.Name, err)
		}
		for _, sw := range d.sweets {
			sw.CategoryID = category.ID
			if _, err := sweetRepo.Create(ctx, &sw); err != nil {
				return fmt.Errorf("error seeding sweet %q: %v", sw.Name, err)
			}
		}
	}
	logger.Info(ctx, "demo catalog seeded", "categories", len(demo))
	return nil
}
