// Package httpapi exposes the shop over HTTP: session endpoints, the public
// catalog, and the ADMIN-guarded management routes. Authentication is a
// bearer-token middleware that never rejects a request on its own; each route
// declares whether it needs a principal and which role.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/server/auth"
	"github.com/sweetshop/backend/internal/server/config"
	"github.com/sweetshop/backend/internal/server/models"
	"github.com/sweetshop/backend/internal/server/ratelimit"
	"github.com/sweetshop/backend/internal/server/repositories/sweets"
	"github.com/sweetshop/backend/internal/server/services"
)

// AuthService is the session surface the handlers need.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// UserService is the account surface the handlers need.
type UserService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Enable(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) error
}

// SweetService is the catalog surface the handlers need.
type SweetService interface {
	Create(ctx context.Context, input services.SweetInput) (*models.Sweet, error)
	Get(ctx context.Context, id string) (*models.Sweet, error)
	List(ctx context.Context) ([]*models.Sweet, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*models.Sweet, error)
	Search(ctx context.Context, filter sweets.SearchFilter) ([]*models.Sweet, error)
	Update(ctx context.Context, id string, input services.SweetInput) (*models.Sweet, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, id string, quantity int) (int, error)
	Restock(ctx context.Context, id string, quantity int) (int, error)
	ListLowStock(ctx context.Context, threshold int) ([]*models.Sweet, error)
	ListTopSelling(ctx context.Context, limit int) ([]*models.Sweet, error)
	ListOutOfStock(ctx context.Context) ([]*models.Sweet, error)
	SetImageURL(ctx context.Context, id, imageURL string) error
}

// CategoryService is the category surface the handlers need.
type CategoryService interface {
	Create(ctx context.Context, name, description string) (*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, id, name, description string) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore signs direct-upload and direct-download URLs for sweet images.
type ImageStore interface {
	PresignedPutURL(ctx context.Context) (string, string, error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
}

// TokenVerifier validates an access token and returns the identity it carries.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Identity, error)
}

// Deps bundles everything the server needs.
type Deps struct {
	Auth       AuthService
	Users      UserService
	Sweets     SweetService
	Categories CategoryService
	Images     ImageStore
	Verifier   TokenVerifier
	Limiter    ratelimit.Limiter
	Logger     logging.Logger
}

// Server is the gin application serving the API.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	deps   Deps
}

// NewServer builds the router with all routes registered.
func NewServer(cfg *config.Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, router: r, deps: deps}
	r.Use(s.bearerAuth())
	s.routes()
	return s
}

// Handler exposes the router for http.Server and for tests.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
		authGroup.POST("/logout", s.handleLogout)
	}

	sweetsGroup := api.Group("/sweets")
	{
		sweetsGroup.GET("", s.handleListSweets)
		sweetsGroup.GET("/search", s.handleSearchSweets)
		sweetsGroup.GET("/top-selling", s.handleListTopSelling)
		sweetsGroup.GET("/low-stock", s.requireRole(models.RoleAdmin), s.handleListLowStock)
		sweetsGroup.GET("/out-of-stock", s.requireRole(models.RoleAdmin), s.handleListOutOfStock)
		sweetsGroup.GET("/category/:id", s.handleListSweetsByCategory)
		sweetsGroup.GET("/:id", s.handleGetSweet)
		sweetsGroup.GET("/:id/image-url", s.handleSweetImageURL)
		sweetsGroup.POST("", s.requireRole(models.RoleAdmin), s.handleCreateSweet)
		sweetsGroup.PUT("/:id", s.requireRole(models.RoleAdmin), s.handleUpdateSweet)
		sweetsGroup.DELETE("/:id", s.requireRole(models.RoleAdmin), s.handleDeleteSweet)
		sweetsGroup.POST("/:id/purchase", s.requireAuth(), s.handlePurchaseSweet)
		sweetsGroup.POST("/:id/restock", s.requireRole(models.RoleAdmin), s.handleRestockSweet)
		sweetsGroup.POST("/:id/image-upload-url", s.requireRole(models.RoleAdmin), s.handleSweetImageUploadURL)
	}

	categoriesGroup := api.Group("/categories")
	{
		categoriesGroup.GET("", s.handleListCategories)
		categoriesGroup.GET("/:id", s.handleGetCategory)
		categoriesGroup.POST("", s.requireRole(models.RoleAdmin), s.handleCreateCategory)
		categoriesGroup.PUT("/:id", s.requireRole(models.RoleAdmin), s.handleUpdateCategory)
		categoriesGroup.DELETE("/:id", s.requireRole(models.RoleAdmin), s.handleDeleteCategory)
	}

	usersGroup := api.Group("/users")
	{
		usersGroup.GET("/profile", s.requireAuth(), s.handleProfile)
		usersGroup.GET("", s.requireRole(models.RoleAdmin), s.handleListUsers)
		usersGroup.GET("/:id", s.requireRole(models.RoleAdmin), s.handleGetUser)
		usersGroup.PUT("/:id/enable", s.requireRole(models.RoleAdmin), s.handleEnableUser)
		usersGroup.PUT("/:id/disable", s.requireRole(models.RoleAdmin), s.handleDisableUser)
	}

	adminGroup := api.Group("/admin")
	{
		adminGroup.POST("/cleanup-tokens", s.requireRole(models.RoleAdmin), s.handleCleanupTokens)
	}
}

// loginRateKey builds the fixed-window key for one login attempt: both the
// account and the address are part of it, so one address cannot burn another
// address's budget for the same email.
func loginRateKey(email, clientIP string) string {
	return "login:" + email + ":" + clientIP
}

func (s *Server) loginAllowed(c *gin.Context, email string) bool {
	if s.deps.Limiter == nil || s.cfg.LoginRateLimit <= 0 {
		return true
	}
	window := s.cfg.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}
	d, err := s.deps.Limiter.Allow(c.Request.Context(), loginRateKey(email, c.ClientIP()), s.cfg.LoginRateLimit, window)
	if err != nil {
		s.deps.Logger.Warn(c.Request.Context(), "rate limiter unavailable, allowing login attempt", "error", err)
		return true
	}
	return d.Allowed
}
