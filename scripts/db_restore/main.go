package main

import (
	"context"
	"fmt"
	"io"
	"os"

	dbfs "github.com/garnizeh/devbuddy/db"
	"github.com/garnizeh/devbuddy/internal/config"
	"github.com/garnizeh/devbuddy/internal/db"
)

// Restores the local store from a backup, then brings its schema up to date.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Getenv("DEVBUDDY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	src := cfg.DatabasePath + ".bak"
	if len(os.Args) > 1 {
		src = os.Args[1]
	}
	dst := cfg.DatabasePath

	if err := copyFile(src, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, dst, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restored from %s.\n", src)
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
