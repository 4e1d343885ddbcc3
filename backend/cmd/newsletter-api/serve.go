package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsletter-dev/newsletter/backend/internal/router"
	"github.com/newsletter-dev/newsletter/backend/internal/setup"
	"github.com/newsletter-dev/newsletter/shared/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(rt *runtimeState) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.loadConfig(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deps, err := setup.SetupDependencies(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			if migrate {
				if err := deps.Storage.Migrate(ctx); err != nil {
					return err
				}
			}

			return serve(ctx, deps)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, deps *setup.Dependencies) error {
	cfg := deps.Config.Public
	r := router.New(deps.Handler, router.Options{
		AllowedOrigins: cfg.Cors.AllowedOrigins,
		HTTPS:          strings.HasPrefix(cfg.Application.BaseURL, "https://"),
		SignupLimiter:  deps.SignupLimiter,
	})
	srv := &http.Server{
		Addr:         deps.Config.Address(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Minute, // publish sends to every subscriber within one request
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", "address", srv.Addr)
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

	logger.Log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
