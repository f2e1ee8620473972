package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/config"
	chiTransport "github.com/kailas-cloud/lexiscope/internal/transport/chi"
	"github.com/kailas-cloud/lexiscope/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger
	logger.Info("Starting lexiscope API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", config.GetEnv()),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("metadata_driver", a.cfg.Metadata.Driver),
	)

	server := chiTransport.NewServer(chiTransport.Services{
		Query:   a.query,
		Chat:    a.chat,
		Catalog: a.catalog,
		Rate:    a.gate,
		Indexes: a.indexes,
		Health:  a.health,
		Usage:   a.usage,
	}, logger)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: server.Router(chiTransport.RouterOptions{
			APIKeys:        a.cfg.Auth.APIKeys,
			AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		}),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if n := a.pipeline.InFlight(); n > 0 {
		logger.Warn("Metadata extractions still in flight at shutdown", zap.Int("count", n))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
