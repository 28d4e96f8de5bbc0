// Package catalog serves the global skill reference data from a local cache.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

// Catalog loads and caches the skill catalog. The in-memory copy is backed
// by a persistent cache so a restart does not need the API.
type Catalog struct {
	remote repository.SkillRepo
	cache  repository.SkillCache
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu     sync.RWMutex
	skills []models.Skill
	loaded time.Time
}

func New(remote repository.SkillRepo, cache repository.SkillCache, ttl time.Duration, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{remote: remote, cache: cache, ttl: ttl, now: time.Now, logger: logger}
}

// Skills returns the catalog, refreshing it when older than the TTL.
func (c *Catalog) Skills(ctx context.Context) ([]models.Skill, error) {
	c.mu.RLock()
	skills, loaded := c.skills, c.loaded
	c.mu.RUnlock()
	if skills != nil && c.fresh(loaded) {
		return skills, nil
	}

	if c.cache != nil {
		cached, fetched, err := c.cache.CachedSkills(ctx)
		if err != nil {
			c.logger.Warn("catalog: read cache", slog.Any("err", err))
		} else if cached != nil && c.fresh(fetched) {
			c.set(cached, fetched)
			return cached, nil
		}
	}

	if err := c.Reload(ctx); err != nil {
		// serve whatever we had rather than nothing
		if stale := c.stale(ctx); stale != nil {
			c.logger.Warn("catalog: serving stale skills", slog.Any("err", err))
			return stale, nil
		}
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skills, nil
}

// Reload fetches the catalog from the API and replaces both copies.
func (c *Catalog) Reload(ctx context.Context) error {
	skills, err := c.remote.ListSkills(ctx)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}
	if skills == nil {
		skills = []models.Skill{}
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })

	if c.cache != nil {
		if err := c.cache.ReplaceSkills(ctx, skills); err != nil {
			c.logger.Warn("catalog: write cache", slog.Any("err", err))
		}
	}
	c.set(skills, c.now())
	return nil
}

// Lookup finds a skill by id in the loaded catalog.
func (c *Catalog) Lookup(id int64) (models.Skill, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.skills {
		if s.ID == id {
			return s, true
		}
	}
	return models.Skill{}, false
}

func (c *Catalog) set(skills []models.Skill, at time.Time) {
	c.mu.Lock()
	c.skills, c.loaded = skills, at
	c.mu.Unlock()
}

func (c *Catalog) fresh(at time.Time) bool {
	return !at.IsZero() && c.now().Sub(at) < c.ttl
}

func (c *Catalog) stale(ctx context.Context) []models.Skill {
	c.mu.RLock()
	skills := c.skills
	c.mu.RUnlock()
	if skills != nil || c.cache == nil {
		return skills
	}
	cached, _, err := c.cache.CachedSkills(ctx)
	if err != nil {
		return nil
	}
	return cached
}

// Available returns the catalog skills the user has not attached yet.
func Available(all []models.Skill, mine []models.UserSkill) []models.Skill {
	taken := make(map[int64]bool, len(mine))
	for _, us := range mine {
		taken[us.SkillID] = true
	}
	out := make([]models.Skill, 0, len(all))
	for _, s := range all {
		if !taken[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
