package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LoadToken returns the stored bearer token, or "" when none is stored.
func (r *SQLiteRepo) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := r.conn.QueryRow(ctx, `SELECT token FROM credentials WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (r *SQLiteRepo) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return r.ClearToken(ctx)
	}
	_, err := r.conn.Exec(ctx, `INSERT INTO credentials (id, token, saved) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, saved = excluded.saved`, token, now())
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) ClearToken(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	r.logger.Debug("sqlite: credential cleared")
	return nil
}
