package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/devbuddy/api"
	dbfs "github.com/garnizeh/devbuddy/db"
	"github.com/garnizeh/devbuddy/internal/catalog"
	"github.com/garnizeh/devbuddy/internal/config"
	"github.com/garnizeh/devbuddy/internal/db"
	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/internal/repository/sqlite"
	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/pkg/marketplace"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	api.SetLogger(logger)
	marketplace.SetLogger(logger)

	logger.Info("starting devbuddy", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	// Local state: credential and skill cache
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			log.Fatalf("Failed to migrate DB: %v", err)
		}
	}
	store := sqlite.New(database, logger)

	client, err := marketplace.NewDefaultClient(cfg.API, store)
	if err != nil {
		log.Fatalf("Failed to create marketplace client: %v", err)
	}

	sess := session.New(client, store, session.Options{Leeway: cfg.TokenLeeway, Logger: logger})
	client.OnUnauthorized(sess.Invalidate)

	app := api.NewApp(api.Deps{
		Session:        sess,
		Projects:       client,
		Applications:   client,
		Skills:         client,
		Profiles:       client,
		Catalog:        catalog.New(client, store, cfg.SkillCacheTTL, logger),
		Notices:        notify.NewCenter(notify.DefaultHistory),
		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce,
	})

	// Requests arriving before this settles are answered with 202
	go func() {
		bctx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
		defer cancel()
		if err := sess.Bootstrap(bctx); err != nil {
			logger.Warn("session bootstrap", slog.Any("err", err))
		}
	}()

	handler := api.SetupRoutes(version, buildTime, app)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}

	app.Close()
	if err := client.Close(); err != nil {
		logger.Error("closing marketplace client", slog.Any("err", err))
	}
	if err := database.Close(); err != nil {
		logger.Error("closing DB", slog.Any("err", err))
	}

	logger.Info("server exited")
}
