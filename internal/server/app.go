// Package server wires the Authgate server together: configuration, storage
// backends, the auth service, and the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/primesecret/authgate/internal/logging"
	"github.com/primesecret/authgate/internal/server/config"
	"github.com/primesecret/authgate/internal/server/httpapi"
	"github.com/primesecret/authgate/internal/server/repositories/repomanager"
	"github.com/primesecret/authgate/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.Manager
	auth   *services.AuthService
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var (
		repos repomanager.Manager
		err   error
	)
	if cfg.DatabaseDSN == "" {
		repos = repomanager.NewInMemoryManager()
	} else {
		repos, err = repomanager.NewPostgresManager(context.Background(), cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	return &App{
		config: cfg,
		logger: logger,
		repos:  repos,
		auth:   services.NewAuthService(repos, cfg),
	}, nil
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancel)

	if app.config.SeedTestUser {
		if err := app.auth.EnsureUser(ctx, "test@local", "1234", "Test User"); err != nil {
			app.logger.Error(ctx, "seeding test user failed", "error", err)
		}
	}

	handler := httpapi.NewHandler(app.auth, app.logger)
	router := httpapi.NewRouter(handler, []byte(app.config.SecretKey), app.config.CORSOrigins, app.logger)
	srv := httpapi.NewServer(app.config.Addr, router, app.logger)

	if err := srv.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}

	app.repos.Close()
}
