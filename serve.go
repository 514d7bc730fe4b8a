package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"booking-app/config"
	authapi "booking-app/internal/api/auth"
	"booking-app/internal/api/users"
	authsvc "booking-app/internal/auth"
	routes "booking-app/internal/app/http"
	"booking-app/internal/errutil"
	"booking-app/internal/logging"
	"booking-app/internal/metrics"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. The process stops on SIGINT or SIGTERM, waits for
in-flight requests and flushes queued mail before exiting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "migrate the store schema before serving")
	return cmd
}

func runServe(parent context.Context, autoMigrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(serviceName, cfg.LogFormat, nil)
	m := metrics.New()

	store, closeStore, err := openStore(ctx, cfg, logger, autoMigrate)
	if err != nil {
		errutil.LogError(ctx, logger, "failed to open credential store", err)
		return err
	}
	defer closeStore()

	limiter, redisClient, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		errutil.LogError(ctx, logger, "failed to set up rate limiter", err)
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	codec, err := authsvc.NewSessionCodec(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	notifier := newNotifier(cfg, logger, m)

	svc, err := authsvc.NewService(store, authsvc.NewBcryptHasher(cfg.BcryptCost), authsvc.RandomTokenIssuer{},
		codec, notifier, logger, authsvc.ServiceConfig{
			ResetTokenTTL: cfg.Reset.TokenTTL,
			ResetBaseURL:  cfg.Reset.BaseURL,
		})
	if err != nil {
		return err
	}

	deps := routes.Deps{
		Auth:     authapi.NewHandler(svc, logger, m, cfg.Reset.HideUnknownEmail),
		Users:    users.NewHandler(svc, logger),
		Sessions: codec,
		Limiter:  limiter,
		Metrics:  m,
		Logger:   logger,
		Ping:     store.Ping,
	}
	if cfg.Google.Enabled() {
		deps.Google = authapi.NewGoogleHandler(svc, logger, m, authapi.GoogleConfig{
			ClientID:         cfg.Google.ClientID,
			ClientSecret:     cfg.Google.ClientSecret,
			RedirectURL:      cfg.Google.RedirectURL,
			FrontendRedirect: cfg.Google.FrontendRedirect,
			SecureCookie:     strings.HasPrefix(cfg.Google.RedirectURL, "https://"),
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps, cfg.CORSOrigin),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		serveErr = oops.Code("HTTP_SERVE_FAILED").With("addr", srv.Addr).Wrap(err)
		errutil.LogError(ctx, logger, "http server stopped", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(shutdownCtx, logger, "http shutdown incomplete", err)
	}
	if err := notifier.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(shutdownCtx, logger, "mail queue not drained", err)
	}

	logger.Info("stopped")
	return serveErr
}
