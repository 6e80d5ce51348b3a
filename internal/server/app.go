// Package server initializes and runs the application: it opens the database,
// applies migrations, seeds the initial data, and starts the HTTP API together
// with the refresh-token expiry reaper, shutting both down gracefully on
// SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/server/config"
	"github.com/sweetshop/backend/internal/server/httpapi"
	"github.com/sweetshop/backend/internal/server/imagestore"
	"github.com/sweetshop/backend/internal/server/ratelimit"
	"github.com/sweetshop/backend/internal/server/reaper"
	"github.com/sweetshop/backend/internal/server/repositories/repomanager"
	"github.com/sweetshop/backend/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger

	db          *sql.DB
	authService *services.AuthService
	httpServer  *httpapi.Server
	reaper      *reaper.Reaper
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	if err := services.SeedAdminUser(ctx, db, rm, cfg, logger); err != nil {
		return nil, fmt.Errorf("seed error: %w", err)
	}
	if err := services.SeedDemoCatalog(ctx, db, rm, logger); err != nil {
		return nil, fmt.Errorf("seed error: %w", err)
	}

	authService := services.NewAuthService(db, rm, cfg)
	userService := services.NewUserService(db, rm, cfg)
	sweetService := services.NewSweetService(db, rm)
	categoryService := services.NewCategoryService(db, rm)

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, 0, nil)
		if err != nil {
			return nil, fmt.Errorf("rate limiter init error: %w", err)
		}
	} else {
		limiter = ratelimit.NewMemoryLimiter(nil, 0)
	}

	httpServer := httpapi.NewServer(cfg, httpapi.Deps{
		Auth:       authService,
		Users:      userService,
		Sweets:     sweetService,
		Categories: categoryService,
		Images:     imagestore.New(cfg),
		Verifier:   authService.Codec(),
		Limiter:    limiter,
		Logger:     logger,
	})

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		authService: authService,
		httpServer:  httpServer,
		reaper:      reaper.New(authService, cfg.ReaperInterval, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.httpServer.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reaper.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
