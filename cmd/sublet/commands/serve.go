package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"sublet/internal/bootstrap"
	"sublet/internal/observability"
	"sublet/internal/server"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
				ServiceName:    "sublet-api",
				ServiceVersion: "1.0.0",
				Environment:    cfg.Env,
				Enabled:        cfg.TracingEnabled,
				Exporter:       cfg.TracingExporter,
				OTLPEndpoint:   cfg.OTLPEndpoint,
				SamplerRatio:   1.0,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					slog.Error("tracing shutdown failed", slog.String("error", err.Error()))
				}
			}()

			if cfg.SentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:              cfg.SentryDSN,
					EnableTracing:    true,
					TracesSampleRate: 0.2,
					Environment:      cfg.Env,
				}); err != nil {
					slog.Error("sentry init failed", slog.String("error", err.Error()))
				} else {
					defer sentry.Flush(2 * time.Second)
				}
			}

			rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
			if err != nil {
				return err
			}
			srv := server.NewServer(cfg, rt)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			var serveErr error
			select {
			case <-quit:
				slog.Info("shutting down server...")
			case serveErr = <-errCh:
				slog.Error("server stopped", slog.String("error", serveErr.Error()))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("server shutdown error", slog.String("error", err.Error()))
			}
			if err := rt.Shutdown(shutdownCtx); err != nil {
				serveErr = errors.Join(serveErr, err)
			}
			return serveErr
		},
	}
}
