package sqlite

import (
	"log/slog"
	"time"

	"github.com/garnizeh/devbuddy/internal/db"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

// SQLiteRepo implements the local-store interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.TokenStore = (*SQLiteRepo)(nil)
var _ repository.SkillCache = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
