package api_test

import (
	"net/http"
	"testing"
)

func TestProfile_Update(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "ana@example.com")

	w := f.do(t, http.MethodPatch, "/profile", map[string]any{"name": "Ana Maria", "bio": "Go and React developer"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if u := f.session.User(); u == nil || u.Name != "Ana Maria" {
		t.Fatalf("session user not refreshed: %+v", u)
	}

	w = f.do(t, http.MethodPatch, "/profile", map[string]any{"name": "A"})
	if w.Code != http.StatusUnprocessableEntity || decodeBody[errorBody](t, w).Fields["name"] == "" {
		t.Fatalf("short name: %d %s", w.Code, w.Body.String())
	}
}

func TestProfile_ClientCannotSetFreelancerFields(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "carla@example.com")

	w := f.do(t, http.MethodPatch, "/profile", map[string]any{"hourlyRate": 50})
	if w.Code != http.StatusUnprocessableEntity || decodeBody[errorBody](t, w).Fields["hourlyRate"] == "" {
		t.Fatalf("client hourly rate: %d %s", w.Code, w.Body.String())
	}
	if len(f.mocks.Auth.Profile) != 0 {
		t.Fatalf("invalid update reached the API")
	}
}

func TestProfile_Skills(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "ana@example.com")

	type skills struct {
		Skills    []struct{ SkillID int64 `json:"skillId"` } `json:"skills"`
		Available []struct{ ID int64 `json:"id"` }          `json:"available"`
	}
	v := decodeBody[skills](t, f.do(t, http.MethodGet, "/profile/skills", nil))
	if len(v.Skills) != 0 || len(v.Available) != 2 {
		t.Fatalf("initial skills: %+v", v)
	}

	w := f.do(t, http.MethodPost, "/profile/skills", map[string]any{"skillId": 1, "proficiencyLevel": "guru"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad proficiency: %d", w.Code)
	}
	w = f.do(t, http.MethodPost, "/profile/skills", map[string]any{"skillId": 1, "proficiencyLevel": "expert"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add skill: %d %s", w.Code, w.Body.String())
	}

	v = decodeBody[skills](t, f.do(t, http.MethodGet, "/profile/skills", nil))
	if len(v.Skills) != 1 || len(v.Available) != 1 || v.Available[0].ID != 2 {
		t.Fatalf("after add: %+v", v)
	}

	if w := f.do(t, http.MethodDelete, "/profile/skills/1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("remove skill: %d", w.Code)
	}
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "ana@example.com")

	list := decodeBody[[]struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}](t, f.do(t, http.MethodGet, "/notifications", nil))
	if len(list) != 1 {
		t.Fatalf("expected the welcome notice, got %+v", list)
	}

	if w := f.do(t, http.MethodDelete, "/notifications/"+list[0].ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("dismiss: %d", w.Code)
	}
	if w := f.do(t, http.MethodDelete, "/notifications/"+list[0].ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("dismiss twice: %d", w.Code)
	}
}
