package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/garnizeh/devbuddy/internal/config"
	"github.com/garnizeh/devbuddy/pkg/marketplace"
)

func validConfig() *config.Config {
	return &config.Config{
		Addr:         ":8080",
		DatabasePath: "devbuddy.db",
		API:          marketplace.Config{BaseURL: "https://api.devbuddy.example/api"},
	}
}

func TestValidate_PlainHTTP_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("DEVBUDDY_ENV", "production")

	cfg := validConfig()
	cfg.API.BaseURL = "http://api.devbuddy.example/api"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for plain http API in non-development env")
	}
}

func TestValidate_PlainHTTP_AllowsDevelopment(t *testing.T) {
	t.Setenv("DEVBUDDY_ENV", "development")

	cfg := validConfig()
	cfg.API.BaseURL = "http://api.devbuddy.example/api"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_PlainHTTP_AllowsLocalhost(t *testing.T) {
	t.Setenv("DEVBUDDY_ENV", "")

	for _, u := range []string{"http://localhost:3000/api", "http://127.0.0.1:3000/api"} {
		cfg := validConfig()
		cfg.API.BaseURL = u
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate(%s) failed: %v", u, err)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"empty base url", func(c *config.Config) { c.API.BaseURL = "" }},
		{"relative base url", func(c *config.Config) { c.API.BaseURL = "/api" }},
		{"negative page size", func(c *config.Config) { c.PageSize = -1 }},
		{"negative debounce", func(c *config.Config) { c.SearchDebounce = -time.Second }},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected Validate to fail")
			}
		})
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.PageSize != 9 {
		t.Fatalf("expected PageSize default 9, got %d", cfg.PageSize)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("expected SearchDebounce default 500ms, got %v", cfg.SearchDebounce)
	}
	if cfg.API.Timeout <= 0 || cfg.API.CircuitFailureThreshold <= 0 || cfg.API.CircuitReset <= 0 {
		t.Fatalf("expected API defaults to be populated: %+v", cfg.API)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.SlogLevel())
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	for _, k := range []string{"DEVBUDDY_ADDR", "DEVBUDDY_API_URL", "DEVBUDDY_DATABASE_PATH", "DEVBUDDY_PAGE_SIZE", "DEVBUDDY_SEARCH_DEBOUNCE"} {
		t.Setenv(k, "")
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "devbuddy.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "devbuddy.db")
	}
	if cfg.API.BaseURL != marketplace.DefaultConfig().BaseURL {
		t.Fatalf("unexpected API base url: %q", cfg.API.BaseURL)
	}
	if cfg.PageSize != 9 || cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("unexpected listing defaults: %d %v", cfg.PageSize, cfg.SearchDebounce)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DEVBUDDY_API_URL", "https://env.example/api")
	t.Setenv("DEVBUDDY_PAGE_SIZE", "12")
	t.Setenv("DEVBUDDY_SEARCH_DEBOUNCE", "250ms")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example/api" || cfg.PageSize != 12 || cfg.SearchDebounce != 250*time.Millisecond {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	// Create a temp YAML file with overrides
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\npage_size: 6\nlog_level: debug\napi:\n  base_url: \"https://file.example/api\"\n  timeout: \"5s\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.PageSize != 6 || cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected listing/log settings: %d %v", cfg.PageSize, cfg.SlogLevel())
	}
	if cfg.API.BaseURL != "https://file.example/api" || cfg.API.Timeout != 5*time.Second {
		t.Fatalf("unexpected API settings: %+v", cfg.API)
	}
	if cfg.API.CircuitFailureThreshold != marketplace.DefaultConfig().CircuitFailureThreshold {
		t.Fatalf("fields absent from the file should keep their defaults: %+v", cfg.API)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
