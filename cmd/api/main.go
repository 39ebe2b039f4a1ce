// @title Claims Review API
// @version 1.0
// @description Insurance claims lifecycle and collaboration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"claims-review/internal/adapters/auth/gotrue"
	"claims-review/internal/adapters/auth/jwtauth"
	pg "claims-review/internal/adapters/storage/postgres"
	"claims-review/internal/domain/shares"
	"claims-review/internal/platform/config"
	"claims-review/internal/platform/logger"
	"claims-review/internal/platform/pubsub"
	"claims-review/internal/ports/auth"
	"claims-review/internal/router"
	"claims-review/internal/seed"
)

func main() {
	if err := run(); err != nil {
		logger.New(logger.Options{}).Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LoggerOptions())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := pubsub.NewHub[shares.Notification](pubsub.DefaultBuffer)

	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		if cfg.MigrateOnStart {
			if err := pg.Migrate(cfg.DatabaseDSN); err != nil {
				return err
			}
			log.Info("migrations applied", nil)
		}
		if db, err = pg.Open(cfg.DatabaseDSN); err != nil {
			return err
		}
		defer db.Close()

		go pg.NewShareListener(cfg.DatabaseDSN, hub, log).Run(ctx)
	} else {
		log.Warn("DB_DSN not set, using in-memory stores", nil)
	}

	var idp auth.IdentityProvider
	var idpClient *gotrue.Client
	if cfg.IdPBaseURL != "" {
		if idpClient, err = gotrue.NewClient(gotrue.Config{
			BaseURL: cfg.IdPBaseURL,
			APIKey:  cfg.IdPAPIKey,
			Timeout: cfg.IdPTimeout,
		}); err != nil {
			return err
		}
		idp = idpClient
	}

	// JWT local si hay secreto; si no, se valida contra el IdP; sin ninguno, modo dev.
	var verifier auth.AuthVerifier
	switch {
	case !cfg.DevAuth():
		v, err := jwtauth.NewVerifier(jwtauth.Config{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		})
		if err != nil {
			return err
		}
		verifier = v
	case idpClient != nil:
		verifier = gotrue.NewVerifier(idpClient)
	default:
		log.Warn("no token verifier configured, trusting X-Debug-User-ID", nil)
	}

	opts := router.Options{
		AuthVerifier:  verifier,
		Identity:      idp,
		DB:            db,
		Notifications: hub,
		Logger:        log,
	}
	if cfg.SeedDemo {
		demo := seed.Demo()
		opts.Seed = &demo
	}

	h, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
