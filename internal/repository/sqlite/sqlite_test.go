package sqlite_test

import (
	"context"
	"testing"
	"time"

	dbfs "github.com/garnizeh/devbuddy/db"
	dbpkg "github.com/garnizeh/devbuddy/internal/db"
	sqlite "github.com/garnizeh/devbuddy/internal/repository/sqlite"
	"github.com/garnizeh/devbuddy/pkg/models"
)

func setupRepo(t *testing.T) (*sqlite.SQLiteRepo, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	return repo, func() { d.Close() }
}

func TestTokenStore(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	// nothing stored yet
	tok, err := repo.LoadToken(ctx)
	if err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q, %v", tok, err)
	}

	if err := repo.SaveToken(ctx, "first"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if err := repo.SaveToken(ctx, "second"); err != nil {
		t.Fatalf("SaveToken overwrite: %v", err)
	}
	tok, err = repo.LoadToken(ctx)
	if err != nil || tok != "second" {
		t.Fatalf("LoadToken = %q, %v; want second", tok, err)
	}

	if err := repo.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if tok, _ := repo.LoadToken(ctx); tok != "" {
		t.Fatalf("token still present after clear: %q", tok)
	}

	// saving an empty token clears
	_ = repo.SaveToken(ctx, "third")
	if err := repo.SaveToken(ctx, ""); err != nil {
		t.Fatalf("SaveToken empty: %v", err)
	}
	if tok, _ := repo.LoadToken(ctx); tok != "" {
		t.Fatalf("empty save should clear, got %q", tok)
	}
}

func TestSkillCache(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	skills, fetched, err := repo.CachedSkills(ctx)
	if err != nil || skills != nil || !fetched.IsZero() {
		t.Fatalf("expected empty cache, got %v %v %v", skills, fetched, err)
	}

	before := time.Now().Add(-time.Second)
	in := []models.Skill{{ID: 2, Name: "Go", Category: "backend"}, {ID: 1, Name: "CSS", Category: "frontend"}}
	if err := repo.ReplaceSkills(ctx, in); err != nil {
		t.Fatalf("ReplaceSkills: %v", err)
	}

	skills, fetched, err = repo.CachedSkills(ctx)
	if err != nil {
		t.Fatalf("CachedSkills: %v", err)
	}
	if len(skills) != 2 || skills[0].Name != "CSS" || skills[1].Category != "backend" {
		t.Fatalf("unexpected cached skills %+v", skills)
	}
	if fetched.Before(before) {
		t.Fatalf("fetched time %v is too old", fetched)
	}

	if err := repo.ReplaceSkills(ctx, []models.Skill{{ID: 3, Name: "Rust"}}); err != nil {
		t.Fatalf("ReplaceSkills second: %v", err)
	}
	skills, _, _ = repo.CachedSkills(ctx)
	if len(skills) != 1 || skills[0].ID != 3 {
		t.Fatalf("replace should drop previous entries: %+v", skills)
	}
}
