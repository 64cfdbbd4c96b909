package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "payg-ledger/internal/adapter/http"
	"payg-ledger/internal/adapter/memory"
	"payg-ledger/internal/adapter/postgres"
	"payg-ledger/internal/adapter/usecase"
	"payg-ledger/internal/config"
	"payg-ledger/internal/core/port"
	"payg-ledger/internal/db"
	"payg-ledger/internal/metrics"
)

// main is the entry point of the payg-ledger service. It loads configuration,
// optionally runs database migrations, initializes the spend record store and
// the ledger service, then starts the HTTP server. On receiving a termination
// signal it gracefully shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var repo port.LedgerRepository
	switch cfg.Store {
	case "memory":
		logger.Info("using in-memory spend record store")
		repo = memory.NewLedgerRepository()
	default:
		// Optionally run migrations if configured. We use the Psql sub-config.
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
			} else {
				logger.Info("migrations applied successfully")
			}
		}

		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.Psql.SeedDemo {
			if err = db.Seed(ctx, pool); err != nil {
				logger.Error("seed error", slog.Any("error", err))
			} else {
				logger.Info("demo data seeded")
			}
		}

		repo = postgres.NewLedgerRepository(pool)
	}

	svc := usecase.NewLedgerService(repo, cfg.Policy.Domain(), usecase.WithMetrics(metrics.New()))

	handler := httpadapter.NewHandler(svc, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
