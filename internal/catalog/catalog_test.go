package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository/mock"
)

type memCache struct {
	mu      sync.Mutex
	skills  []models.Skill
	fetched time.Time
	writes  int
}

func (m *memCache) CachedSkills(ctx context.Context) ([]models.Skill, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skills, m.fetched, nil
}

func (m *memCache) ReplaceSkills(ctx context.Context, skills []models.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skills = append([]models.Skill(nil), skills...)
	m.fetched = time.Now()
	m.writes++
	return nil
}

func TestSkills_LoadsAndCaches(t *testing.T) {
	remote := &mock.SkillRepo{Catalog: []models.Skill{{ID: 2, Name: "React"}, {ID: 1, Name: "Go"}}}
	cache := &memCache{}
	c := New(remote, cache, time.Hour, nil)
	ctx := context.Background()

	got, err := c.Skills(ctx)
	if err != nil {
		t.Fatalf("Skills: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Go" {
		t.Fatalf("expected sorted catalog, got %+v", got)
	}
	if _, err := c.Skills(ctx); err != nil {
		t.Fatalf("Skills: %v", err)
	}
	if remote.ListCalls != 1 || cache.writes != 1 {
		t.Fatalf("expected one fetch and one cache write, got %d/%d", remote.ListCalls, cache.writes)
	}
	if s, ok := c.Lookup(2); !ok || s.Name != "React" {
		t.Fatalf("Lookup(2) = %+v, %v", s, ok)
	}
}

func TestSkills_FreshCacheAvoidsRemote(t *testing.T) {
	remote := &mock.SkillRepo{}
	cache := &memCache{skills: []models.Skill{{ID: 1, Name: "Go"}}, fetched: time.Now()}
	c := New(remote, cache, time.Hour, nil)

	got, err := c.Skills(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("Skills = %+v, %v", got, err)
	}
	if remote.ListCalls != 0 {
		t.Fatalf("remote should not be called for a fresh cache")
	}
}

func TestSkills_StaleCacheServedWhenRemoteFails(t *testing.T) {
	remote := &mock.SkillRepo{ListErr: errors.New("boom")}
	cache := &memCache{skills: []models.Skill{{ID: 1, Name: "Go"}}, fetched: time.Now().Add(-48 * time.Hour)}
	c := New(remote, cache, time.Hour, nil)

	got, err := c.Skills(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("expected stale skills, got %+v, %v", got, err)
	}
}

func TestSkills_NoCacheRemoteFails(t *testing.T) {
	c := New(&mock.SkillRepo{ListErr: errors.New("boom")}, nil, time.Hour, nil)
	if _, err := c.Skills(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAvailable(t *testing.T) {
	all := []models.Skill{{ID: 1, Name: "Go"}, {ID: 2, Name: "React"}, {ID: 3, Name: "SQL"}}
	mine := []models.UserSkill{{ID: 10, SkillID: 2}}

	got := Available(all, mine)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected available skills: %+v", got)
	}
}
