package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/devbuddy/pkg/marketplace"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPageSize       = 9
	DefaultSearchDebounce = 500 * time.Millisecond
)

type Config struct {
	Addr           string             `yaml:"addr"`
	APITimeout     time.Duration      `yaml:"timeout"`
	DatabasePath   string             `yaml:"database_path"`
	MigrateOnStart bool               `yaml:"migrate_on_start"`
	PageSize       int                `yaml:"page_size"`
	SearchDebounce time.Duration      `yaml:"search_debounce"`
	LogLevel       string             `yaml:"log_level"`
	TokenLeeway    time.Duration      `yaml:"token_leeway"`
	SkillCacheTTL  time.Duration      `yaml:"skill_cache_ttl"`
	API            marketplace.Config `yaml:"api"`
}

// LoadConfig builds the configuration from defaults, the environment (a
// .env file in the working directory is loaded first when present) and,
// when path is set, a YAML file.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	api := marketplace.DefaultConfig()
	api.BaseURL = getEnv("DEVBUDDY_API_URL", api.BaseURL)
	api.Timeout = getEnvDuration("DEVBUDDY_API_TIMEOUT", api.Timeout)

	cfg := &Config{
		Addr:           getEnv("DEVBUDDY_ADDR", ":8080"),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("DEVBUDDY_DATABASE_PATH", "devbuddy.db"),
		MigrateOnStart: getEnv("DEVBUDDY_MIGRATE_ON_START", "true") == "true",
		PageSize:       getEnvInt("DEVBUDDY_PAGE_SIZE", DefaultPageSize),
		SearchDebounce: getEnvDuration("DEVBUDDY_SEARCH_DEBOUNCE", DefaultSearchDebounce),
		LogLevel:       getEnv("DEVBUDDY_LOG_LEVEL", "info"),
		TokenLeeway:    30 * time.Second,
		SkillCacheTTL:  time.Hour,
		API:            api,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate fills zero values with defaults and rejects settings that cannot
// work. A plain-HTTP API outside localhost is only allowed when
// DEVBUDDY_ENV=development.
func (c *Config) Validate() error {
	def := marketplace.DefaultConfig()
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "devbuddy.db"
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.SearchDebounce == 0 {
		c.SearchDebounce = DefaultSearchDebounce
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search_debounce must be positive, got %v", c.SearchDebounce)
	}
	if c.TokenLeeway < 0 {
		c.TokenLeeway = 0
	}
	if c.SkillCacheTTL <= 0 {
		c.SkillCacheTTL = time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.ParseRequestURI(c.API.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if u.Scheme == "http" && !isLocal(u.Hostname()) && os.Getenv("DEVBUDDY_ENV") != "development" {
		return fmt.Errorf("api.base_url %q must use https outside development", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = def.Timeout
	}
	if c.API.CircuitFailureThreshold <= 0 {
		c.API.CircuitFailureThreshold = def.CircuitFailureThreshold
	}
	if c.API.CircuitReset <= 0 {
		c.API.CircuitReset = def.CircuitReset
	}

	return nil
}

// SlogLevel returns the configured log level; unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}

func isLocal(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
