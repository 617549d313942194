// cmd/service/main.go
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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-trending-tracker/internal/api"
	"github-trending-tracker/internal/config"
	"github-trending-tracker/internal/database"
	"github-trending-tracker/internal/github"
	"github-trending-tracker/internal/llm"
	"github-trending-tracker/internal/syncer"
	"github-trending-tracker/internal/trending"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	if err := runMigrations(cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 5. Initialize application components
	listingClient := trending.NewClient(logger)
	ghClient := github.NewClient(cfg.GithubToken, cfg.RequestInterval, logger)
	llmClient := llm.NewClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.SummaryReadmeLimit)

	appSyncer, err := syncer.NewSyncer(dbpool, listingClient, ghClient, llmClient, logger, syncer.Config{
		Scopes:       cfg.Scopes,
		SyncInterval: cfg.SyncInterval,
		StaleAfter:   cfg.StaleAfter,
		Concurrency:  cfg.Concurrency,
		TrendingOnly: cfg.RefreshPolicy == config.RefreshTrending,
	})
	if err != nil {
		return fmt.Errorf("failed to create syncer: %w", err)
	}

	// 6. One-shot mode without an API server: run the cycle and exit
	if cfg.HTTPAddr == "" {
		return appSyncer.Start(ctx)
	}

	// 7. Resident mode: syncer in the background, read API in the foreground
	go func() {
		if err := appSyncer.Start(ctx); err != nil {
			logger.Error("Syncer stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(database.New(dbpool), logger),
	}
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received. Exiting.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
