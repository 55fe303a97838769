package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"ourtasker-backend/internal/activity"
	"ourtasker-backend/internal/auth"
	"ourtasker-backend/internal/config"
	"ourtasker-backend/internal/db"
	"ourtasker-backend/internal/integrations"
	"ourtasker-backend/internal/observability"
	"ourtasker-backend/internal/server"
	"ourtasker-backend/internal/tasks"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "OurTasker backend API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), false)
		},
	}

	var migrate bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	serve.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")

	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	})
	return root
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := observability.NewLogger(observability.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	return cfg, logger, nil
}

func runMigrate(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	database, err := db.Connect(ctx, cfg.ConnString())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}

func runServe(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	database, err := db.Connect(ctx, cfg.ConnString())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()
	logger.Info("connected to postgres", "host", cfg.DBHost, "db", cfg.DBName)

	if migrate {
		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	sheets, err := integrations.NewSheets(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		return err
	}
	if !sheets.Live() {
		logger.Info("google sheets credentials not configured, sheet logging is offline")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := server.NewRouter(server.Deps{
		Users:       auth.NewPGStore(database),
		Tasks:       tasks.NewPGStore(database),
		Activities:  activity.NewPGStore(database),
		JWTSecret:   cfg.JWTSecret,
		JWTTTL:      cfg.JWTTTL,
		CORSOrigins: cfg.CORSOrigins,
		AIRateLimit: server.RateLimitConfig{
			RequestsPerMinute: cfg.AIRatePerMinute,
			Burst:             cfg.AIRateBurst,
		},
		Slack:    integrations.NewSlack(cfg.SlackTimeout),
		Sheets:   sheets,
		Metrics:  observability.NewMetrics(reg),
		Gatherer: reg,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.HTTPAddr)
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
