package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/dbx"
	"github.com/sweetshop/backend/internal/server/auth"
	"github.com/sweetshop/backend/internal/server/config"
	"github.com/sweetshop/backend/internal/server/models"
	"github.com/sweetshop/backend/internal/server/repositories/repomanager"
)

// UserService manages principal accounts: self-service registration plus the
// administrative list/enable/disable operations.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bcryptCost  int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{db: db, repomanager: m, bcryptCost: cfg.BcryptCost}
}

// Register creates a new enabled account with the default USER role. A
// duplicate email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Enabled:      true,
		Roles:        []string{models.RoleUser},
	}
	// The user row and its role rows are separate inserts; a transaction keeps
	// a failed role insert from leaving a role-less account behind.
	var created *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var createErr error
		created, createErr = s.repomanager.Users(tx).Create(ctx, user)
		return createErr
	}); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return created, nil
}

// GetByEmail returns the account for the given email, or common.ErrorNotFound.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByEmail(ctx, email)
}

// GetByID returns the account with the given id, or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByID(ctx, id)
}

// List returns every account with its roles.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.List(ctx)
}

// Enable re-activates a disabled account.
func (s *UserService) Enable(ctx context.Context, id string) error {
	repo := s.repomanager.Users(s.db)
	return repo.SetEnabled(ctx, id, true)
}

// Disable deactivates an account. The account keeps any issued access tokens,
// but the request authenticator re-checks the enabled flag on every call, so
// the lockout takes effect immediately.
func (s *UserService) Disable(ctx context.Context, id string) error {
	repo := s.repomanager.Users(s.db)
	return repo.SetEnabled(ctx, id, false)
}
