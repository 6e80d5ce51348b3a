package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/server/auth"
	"github.com/sweetshop/backend/internal/server/config"
	"github.com/sweetshop/backend/internal/server/models"
	"github.com/sweetshop/backend/internal/server/ratelimit"
	"github.com/sweetshop/backend/internal/server/repositories/sweets"
	"github.com/sweetshop/backend/internal/server/services"
)

type fakeAuthSvc struct {
	loginPair  *services.TokenPair
	loginErr   error
	loginCalls int

	refreshPair *services.TokenPair
	refreshErr  error

	logoutErr   error
	logoutCalls int

	cleanupN   int64
	cleanupErr error
}

func (f *fakeAuthSvc) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginPair, nil
}

func (f *fakeAuthSvc) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshPair, nil
}

func (f *fakeAuthSvc) Logout(ctx context.Context, refreshToken string) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuthSvc) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return f.cleanupN, f.cleanupErr
}

type fakeUserSvc struct {
	registerOut *models.User
	registerErr error

	byEmail map[string]*models.User

	byIDOut *models.User
	byIDErr error

	listOut []*models.User
	listErr error

	setEnabledErr  error
	setEnabledID   string
	setEnabledWith bool
}

func (f *fakeUserSvc) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}

func (f *fakeUserSvc) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUserSvc) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeUserSvc) List(ctx context.Context) ([]*models.User, error) {
	return f.listOut, f.listErr
}

func (f *fakeUserSvc) Enable(ctx context.Context, id string) error {
	f.setEnabledID = id
	f.setEnabledWith = true
	return f.setEnabledErr
}

func (f *fakeUserSvc) Disable(ctx context.Context, id string) error {
	f.setEnabledID = id
	f.setEnabledWith = false
	return f.setEnabledErr
}

type fakeSweetSvc struct {
	createOut *models.Sweet
	createErr error

	getOut *models.Sweet
	getErr error

	listOut []*models.Sweet
	listErr error

	byCatOut []*models.Sweet
	byCatErr error

	searchOut  []*models.Sweet
	searchErr  error
	searchWith sweets.SearchFilter

	updateOut *models.Sweet
	updateErr error

	deleteErr error

	purchaseOut int
	purchaseErr error

	restockOut int
	restockErr error

	lowOut       []*models.Sweet
	lowErr       error
	lowThreshold int

	topOut   []*models.Sweet
	topErr   error
	topLimit int

	outOut []*models.Sweet
	outErr error

	setImageErr  error
	setImageID   string
	setImageWith string
}

func (f *fakeSweetSvc) Create(ctx context.Context, input services.SweetInput) (*models.Sweet, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeSweetSvc) Get(ctx context.Context, id string) (*models.Sweet, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeSweetSvc) List(ctx context.Context) ([]*models.Sweet, error) {
	return f.listOut, f.listErr
}

func (f *fakeSweetSvc) ListByCategory(ctx context.Context, categoryID string) ([]*models.Sweet, error) {
	return f.byCatOut, f.byCatErr
}

func (f *fakeSweetSvc) Search(ctx context.Context, filter sweets.SearchFilter) ([]*models.Sweet, error) {
	f.searchWith = filter
	return f.searchOut, f.searchErr
}

func (f *fakeSweetSvc) Update(ctx context.Context, id string, input services.SweetInput) (*models.Sweet, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeSweetSvc) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func (f *fakeSweetSvc) Purchase(ctx context.Context, id string, quantity int) (int, error) {
	if f.purchaseErr != nil {
		return 0, f.purchaseErr
	}
	return f.purchaseOut, nil
}

func (f *fakeSweetSvc) Restock(ctx context.Context, id string, quantity int) (int, error) {
	if f.restockErr != nil {
		return 0, f.restockErr
	}
	return f.restockOut, nil
}

func (f *fakeSweetSvc) ListLowStock(ctx context.Context, threshold int) ([]*models.Sweet, error) {
	f.lowThreshold = threshold
	return f.lowOut, f.lowErr
}

func (f *fakeSweetSvc) ListTopSelling(ctx context.Context, limit int) ([]*models.Sweet, error) {
	f.topLimit = limit
	return f.topOut, f.topErr
}

func (f *fakeSweetSvc) ListOutOfStock(ctx context.Context) ([]*models.Sweet, error) {
	return f.outOut, f.outErr
}

func (f *fakeSweetSvc) SetImageURL(ctx context.Context, id, imageURL string) error {
	f.setImageID = id
	f.setImageWith = imageURL
	return f.setImageErr
}

type fakeCategorySvc struct {
	createOut *models.Category
	createErr error

	getOut *models.Category
	getErr error

	listOut []*models.Category
	listErr error

	updateOut *models.Category
	updateErr error

	deleteErr error
}

func (f *fakeCategorySvc) Create(ctx context.Context, name, description string) (*models.Category, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeCategorySvc) Get(ctx context.Context, id string) (*models.Category, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeCategorySvc) List(ctx context.Context) ([]*models.Category, error) {
	return f.listOut, f.listErr
}

func (f *fakeCategorySvc) Update(ctx context.Context, id, name, description string) (*models.Category, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeCategorySvc) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

type fakeImages struct {
	putKey string
	putURL string
	putErr error

	getURL string
	getErr error
}

func (f *fakeImages) PresignedPutURL(ctx context.Context) (string, string, error) {
	if f.putErr != nil {
		return "", "", f.putErr
	}
	return f.putKey, f.putURL, nil
}

func (f *fakeImages) PresignedGetURL(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.getURL, nil
}

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (l *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error) {
	l.calls++
	if l.err != nil {
		return ratelimit.Decision{}, l.err
	}
	return ratelimit.Decision{Allowed: l.allowed, Limit: limit}, nil
}

// --- helpers ---

var testCodec = auth.NewTokenCodec([]byte("test-secret"), time.Minute)

func testUser() *models.User {
	return &models.User{
		ID:      "u1",
		Email:   "user@example.com",
		Enabled: true,
		Roles:   []string{models.RoleUser},
	}
}

func testAdmin() *models.User {
	return &models.User{
		ID:      "a1",
		Email:   "admin@sweetshop.com",
		Enabled: true,
		Roles:   []string{models.RoleAdmin, models.RoleUser},
	}
}

func mustToken(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := testCodec.Issue(u.Email, u.Roles)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func mustOtherSecretToken(t *testing.T, u *models.User) string {
	t.Helper()
	other := auth.NewTokenCodec([]byte("other-secret"), time.Minute)
	token, err := other.Issue(u.Email, u.Roles)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Auth == nil {
		deps.Auth = &fakeAuthSvc{}
	}
	if deps.Users == nil {
		deps.Users = &fakeUserSvc{}
	}
	if deps.Sweets == nil {
		deps.Sweets = &fakeSweetSvc{}
	}
	if deps.Categories == nil {
		deps.Categories = &fakeCategorySvc{}
	}
	if deps.Images == nil {
		deps.Images = &fakeImages{}
	}
	if deps.Verifier == nil {
		deps.Verifier = testCodec
	}
	if deps.Limiter == nil {
		deps.Limiter = &stubLimiter{allowed: true}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
	cfg := &config.Config{
		LoginRateLimit:  10,
		LoginRateWindow: time.Minute,
	}
	return NewServer(cfg, deps)
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
