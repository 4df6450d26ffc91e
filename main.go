package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LenaAI/middleware"
	"LenaAI/pkg/config"
	"LenaAI/pkg/database"
	"LenaAI/pkg/logger"
	svc "LenaAI/pkg/services"
	"LenaAI/pkg/store"
	tokenstore "LenaAI/pkg/token"
	"LenaAI/routes"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// buildRouter opens the database and wires stores, services and routes for
// cfg. The returned cleanup releases the database and background janitors.
func buildRouter(cfg *config.Config, log zerolog.Logger) (*gin.Engine, func(), error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { _ = sqlDB.Close() })
	}
	repo := store.New(db)

	completer, err := svc.NewCompleter(cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	deps := svc.ChatServiceDeps{
		Repo:         repo,
		Completer:    completer,
		Policy:       svc.SignupImplicit,
		HistoryLimit: cfg.HistoryLimit,
		Persona:      cfg.Persona,
		Logger:       log,
	}
	var auth *svc.AuthService
	if cfg.TokenAuth() {
		revoked := tokenstore.New(cfg.RevokedTokensMax)
		closers = append(closers, revoked.Close)
		auth = svc.NewAuthService(repo, cfg.JWTSecret, cfg.JWTTTL, revoked, log)
		deps.Auth = auth
		deps.Policy = svc.SignupRequired
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitCapacity)
	closers = append(closers, limiter.Close)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(routes.Deps{
		Chat:        svc.NewChatService(deps),
		Auth:        auth,
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})
	return router, cleanup, nil
}

func run(cfg *config.Config, log zerolog.Logger) error {
	router, cleanup, err := buildRouter(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("auth_mode", cfg.AuthMode).
			Str("provider", cfg.Provider).
			Str("db_driver", cfg.DatabaseDriver).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
