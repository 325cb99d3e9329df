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

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-scheduling/internal/api"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/logging"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
	"github.com/hackgods/clinic-scheduling/internal/notification"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "notification-worker",
		Short:         "Consumes booking events and records simulated emails",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Subscribe to the notification channel until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWorker()
			if err != nil {
				return fmt.Errorf("config load error: %w", err)
			}
			log := logging.New(cfg.Env, cfg.LogLevel, "notification-worker")
			return runWorker(cmd.Context(), cfg, log)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runWorker(parent context.Context, cfg config.Config, log zerolog.Logger) error {
	log.Info().
		Str("env", cfg.Env).
		Str("channel", cfg.NotifyChannel).
		Str("audit_backend", cfg.AuditLogBackend).
		Str("audit_path", cfg.AuditLogPath).
		Msg("notification-worker starting up")

	rootCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.Redis())
	if err != nil {
		return fmt.Errorf("redis connection error: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	audit, err := notification.OpenAuditLog(cfg.AuditLogBackend, cfg.AuditLogPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := audit.Close(); err != nil {
			log.Error().Err(err).Msg("error closing audit log")
		}
	}()

	m := metrics.New()
	worker := notification.NewWorker(rdb, cfg.NotifyChannel, audit, m, log)

	if cfg.WorkerHTTPAddr != "" {
		srv := opsServer(cfg, m, api.NewHealthHandler(cfg.Env, version, api.RedisDependency(rdb, true)))
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("ops listener started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("ops listener failed")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	if err := worker.Run(rootCtx); err != nil {
		return fmt.Errorf("notification worker: %w", err)
	}
	log.Info().Msg("notification-worker stopped")
	return nil
}

// opsServer exposes metrics and health probes for the worker.
func opsServer(cfg config.Config, m *metrics.Metrics, health *api.HealthHandler) *http.Server {
	r := chi.NewRouter()
	r.Use(api.RequestIDMiddleware)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return &http.Server{
		Addr:              cfg.WorkerHTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
