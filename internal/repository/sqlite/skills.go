package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

// CachedSkills returns the cached catalog and when it was fetched. An empty
// cache returns a nil slice and the zero time.
func (r *SQLiteRepo) CachedSkills(ctx context.Context) ([]models.Skill, time.Time, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, category, fetched FROM skills_cache ORDER BY name`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query skills cache: %w", err)
	}
	defer rows.Close()

	var (
		skills  []models.Skill
		fetched int64
	)
	for rows.Next() {
		var s models.Skill
		var f int64
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &f); err != nil {
			return nil, time.Time{}, err
		}
		if fetched == 0 || f < fetched {
			fetched = f
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}
	if len(skills) == 0 {
		return nil, time.Time{}, nil
	}
	return skills, time.UnixMilli(fetched).UTC(), nil
}

// ReplaceSkills swaps the whole cached catalog in one transaction.
func (r *SQLiteRepo) ReplaceSkills(ctx context.Context, skills []models.Skill) error {
	ts := now()
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM skills_cache`); err != nil {
			return fmt.Errorf("clear skills cache: %w", err)
		}
		for _, s := range skills {
			if _, err := tx.ExecContext(ctx, `INSERT INTO skills_cache (id, name, category, fetched) VALUES (?, ?, ?, ?)`, s.ID, s.Name, s.Category, ts); err != nil {
				return fmt.Errorf("cache skill %d: %w", s.ID, err)
			}
		}
		return nil
	})
}
