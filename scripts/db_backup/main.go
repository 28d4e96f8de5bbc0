package main

import (
	"context"
	"fmt"
	"os"

	"github.com/garnizeh/devbuddy/internal/config"
	"github.com/garnizeh/devbuddy/internal/db"
)

// Backs up the local store with VACUUM INTO, which gives a consistent copy
// even while the server holds the file open.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Getenv("DEVBUDDY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	dst := cfg.DatabasePath + ".bak"
	if len(os.Args) > 1 {
		dst = os.Args[1]
	}
	// VACUUM INTO refuses to overwrite
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := database.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup written to %s.\n", dst)
}
