package services

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/dbx"
	"github.com/sweetshop/backend/internal/server/models"
	categoriesrepo "github.com/sweetshop/backend/internal/server/repositories/categories"
	refreshtokensrepo "github.com/sweetshop/backend/internal/server/repositories/refreshtokens"
	"github.com/sweetshop/backend/internal/server/repositories/repomanager"
	sweetsrepo "github.com/sweetshop/backend/internal/server/repositories/sweets"
	usersrepo "github.com/sweetshop/backend/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// --- fakes ---

type fakeUsersRepo struct {
	createOut   *models.User
	createErr   error
	createdWith *models.User
	createCalls int

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error

	listOut []*models.User
	listErr error

	setEnabledErr  error
	setEnabledID   string
	setEnabledWith bool

	countOut int64
	countErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.createCalls++
	f.createdWith = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	return f.listOut, f.listErr
}

func (f *fakeUsersRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	f.setEnabledID = id
	f.setEnabledWith = enabled
	return f.setEnabledErr
}

func (f *fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	return f.countOut, f.countErr
}

type fakeRefreshRepo struct {
	createErr     error
	createdTokens []string
	createdUser   string

	findOut *models.RefreshToken
	findErr error

	claimUser string
	claimErr  error
	claimOnce bool
	claimGate atomic.Bool

	delErr   error
	delCalls int

	delAllErr   error
	delAllCalls int

	sweepN   int64
	sweepErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdTokens = append(f.createdTokens, token)
	f.createdUser = userID
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) DeleteReturningUser(ctx context.Context, token string) (string, error) {
	if f.claimErr != nil {
		return "", f.claimErr
	}
	if f.claimOnce && f.claimGate.Swap(true) {
		return "", common.ErrorNotFound
	}
	return f.claimUser, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.delCalls++
	return f.delErr
}

func (f *fakeRefreshRepo) DeleteAllByUser(ctx context.Context, userID string) error {
	f.delAllCalls++
	return f.delAllErr
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.sweepN, f.sweepErr
}

type fakeSweetsRepo struct {
	createOut   *models.Sweet
	createErr   error
	createCalls int

	getOut *models.Sweet
	getErr error

	listOut []*models.Sweet
	listErr error

	byCatOut []*models.Sweet
	byCatErr error

	searchOut  []*models.Sweet
	searchErr  error
	searchWith sweetsrepo.SearchFilter

	updateErr  error
	updateWith *models.Sweet

	deleteErr error

	decOut int
	decErr error

	incOut int
	incErr error

	lowOut []*models.Sweet
	lowErr error

	topOut  []*models.Sweet
	topErr  error
	topWith int

	outOut []*models.Sweet
	outErr error

	setImageErr error

	countByCatOut int64
	countByCatErr error

	countOut int64
	countErr error
}

func (f *fakeSweetsRepo) Create(ctx context.Context, s *models.Sweet) (*models.Sweet, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return s, nil
}

func (f *fakeSweetsRepo) GetByID(ctx context.Context, id string) (*models.Sweet, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeSweetsRepo) List(ctx context.Context) ([]*models.Sweet, error) {
	return f.listOut, f.listErr
}

func (f *fakeSweetsRepo) ListByCategory(ctx context.Context, categoryID string) ([]*models.Sweet, error) {
	return f.byCatOut, f.byCatErr
}

func (f *fakeSweetsRepo) Search(ctx context.Context, filter sweetsrepo.SearchFilter) ([]*models.Sweet, error) {
	f.searchWith = filter
	return f.searchOut, f.searchErr
}

func (f *fakeSweetsRepo) Update(ctx context.Context, s *models.Sweet) error {
	f.updateWith = s
	return f.updateErr
}

func (f *fakeSweetsRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func (f *fakeSweetsRepo) DecrementQuantity(ctx context.Context, id string, n int) (int, error) {
	if f.decErr != nil {
		return 0, f.decErr
	}
	return f.decOut, nil
}

func (f *fakeSweetsRepo) IncrementQuantity(ctx context.Context, id string, n int) (int, error) {
	if f.incErr != nil {
		return 0, f.incErr
	}
	return f.incOut, nil
}

func (f *fakeSweetsRepo) ListLowStock(ctx context.Context, threshold int) ([]*models.Sweet, error) {
	return f.lowOut, f.lowErr
}

func (f *fakeSweetsRepo) ListTopSelling(ctx context.Context, limit int) ([]*models.Sweet, error) {
	f.topWith = limit
	return f.topOut, f.topErr
}

func (f *fakeSweetsRepo) ListOutOfStock(ctx context.Context) ([]*models.Sweet, error) {
	return f.outOut, f.outErr
}

func (f *fakeSweetsRepo) SetImageURL(ctx context.Context, id string, imageURL string) error {
	return f.setImageErr
}

func (f *fakeSweetsRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return f.countByCatOut, f.countByCatErr
}

func (f *fakeSweetsRepo) Count(ctx context.Context) (int64, error) {
	return f.countOut, f.countErr
}

type fakeCategoriesRepo struct {
	createOut   *models.Category
	createErr   error
	createCalls int

	getOut *models.Category
	getErr error

	listOut []*models.Category
	listErr error

	updateErr  error
	updateWith *models.Category

	deleteErr   error
	deleteCalls int

	countOut int64
	countErr error
}

func (f *fakeCategoriesRepo) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return c, nil
}

func (f *fakeCategoriesRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeCategoriesRepo) List(ctx context.Context) ([]*models.Category, error) {
	return f.listOut, f.listErr
}

func (f *fakeCategoriesRepo) Update(ctx context.Context, c *models.Category) error {
	f.updateWith = c
	return f.updateErr
}

func (f *fakeCategoriesRepo) Delete(ctx context.Context, id string) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeCategoriesRepo) Count(ctx context.Context) (int64, error) {
	return f.countOut, f.countErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	s *fakeSweetsRepo
	c *fakeCategoriesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }

func (m *fakeRepoManager) Sweets(db dbx.DBTX) sweetsrepo.Repository { return m.s }

func (m *fakeRepoManager) Categories(db dbx.DBTX) categoriesrepo.Repository { return m.c }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)
