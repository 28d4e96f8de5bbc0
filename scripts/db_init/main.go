package main

import (
	"context"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/devbuddy/db"
	"github.com/garnizeh/devbuddy/internal/config"
	"github.com/garnizeh/devbuddy/internal/db"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Getenv("DEVBUDDY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	var applied int
	if err := database.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&applied); err != nil {
		fmt.Fprintf(os.Stderr, "Migration check error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Database %s initialized (%d migrations applied).\n", cfg.DatabasePath, applied)
}
