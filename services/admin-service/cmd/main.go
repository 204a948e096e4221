package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/config"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/handler"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/usecase"
	"github.com/vasapolrittideah/identity-docstore/shared/auth"
	"github.com/vasapolrittideah/identity-docstore/shared/logger"
	"github.com/vasapolrittideah/identity-docstore/shared/mailer"
	"github.com/vasapolrittideah/identity-docstore/shared/middleware"
	"github.com/vasapolrittideah/identity-docstore/shared/provider"
	"github.com/vasapolrittideah/identity-docstore/shared/utilities"
	"github.com/vasapolrittideah/identity-docstore/shared/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validator := validation.New()

	cfg, err := config.NewAdminServiceConfig(validator)
	if err != nil {
		logger.New("info", false).Fatal().Err(err).Msg("failed to load admin service configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if err := run(ctx, cfg, validator, log); err != nil {
		log.Fatal().Err(err).Msg("admin service stopped")
	}
}

// run serves until ctx is done or a server fails. Every resource it opens is
// released before it returns.
func run(ctx context.Context, cfg *config.AdminServiceConfig, validator *validation.Validator, log *zerolog.Logger) error {
	stores, err := cfg.Identity.Open(ctx, log)
	if err != nil {
		return fmt.Errorf("open identity store: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close identity store")
		}
	}()

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Secret, cfg.Token.Audience, cfg.Token.Issuer, cfg.Token.ExpiresIn)

	roleUsecase := usecase.NewRoleUsecase(stores.Roles)
	userUsecase := usecase.NewUserUsecase(stores.Users)

	var notifier usecase.LockoutNotifier
	if cfg.Mailer.Enabled() {
		notifier = usecase.NewMailLockoutNotifier(mailer.NewMailer(cfg.Mailer))
	}

	authUsecase := usecase.NewAuthUsecase(log, stores.Roles, stores.Users, jwtAuth, cfg.AdminRole, usecase.LockoutPolicy{
		MaxFailedAttempts: cfg.Lockout.MaxFailedAttempts,
		Duration:          cfg.Lockout.Duration,
	}, notifier)

	var google usecase.GoogleTokenValidator
	if cfg.GoogleClientID != "" {
		googleProvider, err := provider.NewGoogleOAuthProvider(ctx, cfg.GoogleClientID)
		if err != nil {
			return fmt.Errorf("create Google OAuth provider: %w", err)
		}
		google = googleProvider
	}
	loginUsecase := usecase.NewLoginUsecase(stores.Users, google)

	if cfg.Bootstrap.UserName != "" {
		if err := authUsecase.Bootstrap(ctx, usecase.BootstrapParams{
			UserName: cfg.Bootstrap.UserName,
			Email:    cfg.Bootstrap.Email,
			Password: cfg.Bootstrap.Password,
		}); err != nil {
			return fmt.Errorf("bootstrap administrator: %w", err)
		}
	}

	healthListener, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		return fmt.Errorf("listen for health checks: %w", err)
	}
	healthServer := utilities.NewHealthServer(log)
	defer healthServer.Stop()

	serverErr := make(chan error, 2)
	go func() {
		if err := healthServer.Serve(healthListener); err != nil {
			serverErr <- fmt.Errorf("gRPC health server: %w", err)
		}
	}()

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: handler.NewAdminHTTPHandler(
			log,
			validator,
			authUsecase,
			roleUsecase,
			userUsecase,
			loginUsecase,
			middleware.NewJWTMiddleware(log, jwtAuth, []string{handler.TokenPath}),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("engine", stores.DB.Engine()).Msg("admin API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("admin API: %w", err)
		}
	}()

	healthServer.SetServing(true)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-serverErr:
		log.Error().Err(runErr).Msg("server failed, shutting down")
	}
	healthServer.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down admin API")
	}

	return runErr
}
