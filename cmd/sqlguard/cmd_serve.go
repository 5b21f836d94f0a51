package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqlguard/sqlguard/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation API over HTTP",
	Long: `Start the SqlGuard HTTP API, exposing POST /v1/validate, GET /healthz,
GET /metrics (when metrics are enabled) and the Swagger docs at /docs.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	registry := a.registry
	if !a.cfg.Metrics.Enabled {
		registry = nil
	}

	server := httpapi.NewServer(a.validator, registry, a.logger, httpapi.Config{
		RateLimitRPS:   a.cfg.Server.RateLimitRPS,
		RateLimitBurst: a.cfg.Server.RateLimitBurst,
	})

	addr := net.JoinHostPort(a.cfg.Server.Host, fmt.Sprintf("%d", a.cfg.Server.Port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving sqlguard API", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("sqlguard: serving HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("shutting down sqlguard API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
