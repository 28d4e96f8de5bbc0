package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

type browserView struct {
	Heading string `json:"heading"`
	Items   []struct {
		ID          int64                      `json:"id"`
		Title       string                     `json:"title"`
		Application *models.ProjectApplication `json:"application"`
	} `json:"items"`
	Total         int      `json:"total"`
	ActiveFilters []string `json:"activeFilters"`
	EmptyHint     string   `json:"emptyHint"`
	SearchText    string   `json:"searchText"`
	QuickStatus   string   `json:"quickStatus"`
	QuickBudget   string   `json:"quickBudget"`
	Filter        struct {
		BudgetMin *float64 `json:"budgetMin"`
		BudgetMax *float64 `json:"budgetMax"`
	} `json:"filter"`
}

func TestProjects_ClientSeesOwnProjects(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "carla@example.com")

	w := f.do(t, http.MethodGet, "/projects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	v := decodeBody[browserView](t, w)
	if v.Heading != "My Projects" || len(v.Items) != 1 || v.Items[0].ID != 1 {
		t.Fatalf("unexpected listing %+v", v)
	}
	if q := f.mocks.Projects.LastQuery(); q.UserID == nil || *q.UserID != 1 {
		t.Fatalf("listing not scoped to the client: %+v", q)
	}
}

func TestProjects_QuickBudgetFeedsPanel(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "ana@example.com")

	w := f.do(t, http.MethodPost, "/projects/filters/quick", map[string]string{"budget": "1000-5000"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	v := decodeBody[browserView](t, w)
	if v.QuickBudget != "1000-5000" || v.Filter.BudgetMin == nil || *v.Filter.BudgetMin != 1000 || *v.Filter.BudgetMax != 5000 {
		t.Fatalf("filter not applied: %+v", v)
	}
	if len(v.Items) != 1 || v.Items[0].Title != "React dashboard" {
		t.Fatalf("expected only the matching project: %+v", v.Items)
	}

	w = f.do(t, http.MethodGet, "/projects/filters/panel", nil)
	panel := decodeBody[map[string]string](t, w)
	if panel["budgetMin"] != "1000" || panel["budgetMax"] != "5000" {
		t.Fatalf("panel not seeded from the quick filter: %+v", panel)
	}

	w = f.do(t, http.MethodPost, "/projects/filters/quick", map[string]string{"budget": "lots"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown shortcut: %d", w.Code)
	}

	// a bad budget rejects the whole request, valid status included
	queries := f.mocks.Projects.QueryCount()
	w = f.do(t, http.MethodPost, "/projects/filters/quick", map[string]string{"status": "published", "budget": "bogus"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mixed shortcuts: %d", w.Code)
	}
	if fields := decodeBody[errorBody](t, w).Fields; fields["budget"] == "" || fields["status"] != "" {
		t.Fatalf("unexpected field errors: %+v", fields)
	}
	w = f.do(t, http.MethodGet, "/projects", nil)
	v = decodeBody[browserView](t, w)
	if v.QuickStatus != "all" || v.QuickBudget != "1000-5000" {
		t.Fatalf("rejected request changed the filter: %+v", v)
	}
	if got := f.mocks.Projects.QueryCount(); got != queries {
		t.Fatalf("rejected request fetched: %d queries, had %d", got, queries)
	}
}

func TestProjects_SearchAndReset(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "ana@example.com")

	w := f.do(t, http.MethodPost, "/projects/search", map[string]any{"text": "billing", "settle": true})
	v := decodeBody[browserView](t, w)
	if v.SearchText != "billing" || len(v.Items) != 1 || v.Items[0].Title != "Go API" {
		t.Fatalf("search not applied: %+v", v)
	}

	w = f.do(t, http.MethodPost, "/projects/search", map[string]any{"text": "nothing matches", "settle": true})
	v = decodeBody[browserView](t, w)
	if len(v.Items) != 0 || v.EmptyHint != "Try adjusting your filters or search terms" {
		t.Fatalf("empty state: %+v", v)
	}

	w = f.do(t, http.MethodPost, "/projects/filters/reset", nil)
	v = decodeBody[browserView](t, w)
	if v.SearchText != "" || len(v.ActiveFilters) != 0 || len(v.Items) != 2 {
		t.Fatalf("reset left state behind: %+v", v)
	}
	if q := f.mocks.Projects.LastQuery(); q.Search != "" || q.Page != 1 {
		t.Fatalf("reset query: %+v", q)
	}
}

func TestProjects_Create(t *testing.T) {
	f := newFixture(t)
	f.bootstrap(t)
	f.login(t, "carla@example.com")

	in := models.CreateProjectInput{
		Title:       "Mobile app",
		Description: "A cross-platform mobile application for booking appointments.",
		BudgetMin:   5000,
		BudgetMax:   1000,
		Deadline:    time.Now().Add(14 * 24 * time.Hour),
		Skills:      []int64{1},
	}
	w := f.do(t, http.MethodPost, "/projects", in)
	if w.Code != http.StatusUnprocessableEntity || decodeBody[errorBody](t, w).Fields["budgetMin"] == "" {
		t.Fatalf("inverted budget: %d %s", w.Code, w.Body.String())
	}

	in.BudgetMin, in.BudgetMax = 1000, 5000
	w = f.do(t, http.MethodPost, "/projects", in)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	if len(f.mocks.Projects.Created) != 1 {
		t.Fatalf("expected one create call, got %d", len(f.mocks.Projects.Created))
	}
}

func TestProjects_DetailsCarryOwnApplication(t *testing.T) {
	f := newFixture(t)
	f.mocks.Applications.Apps = []models.ProjectApplication{
		{ID: 7, ProjectID: 1, FreelancerID: 2, Status: models.ApplicationStatusApplied},
	}
	f.bootstrap(t)
	f.login(t, "ana@example.com")

	w := f.do(t, http.MethodGet, "/projects/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("details: %d %s", w.Code, w.Body.String())
	}
	d := decodeBody[struct {
		ID            int64                      `json:"id"`
		DaysRemaining int                        `json:"daysRemaining"`
		Application   *models.ProjectApplication `json:"application"`
	}](t, w)
	if d.ID != 1 || d.DaysRemaining < 29 || d.Application == nil || d.Application.ID != 7 {
		t.Fatalf("unexpected details %+v", d)
	}

	if w := f.do(t, http.MethodGet, "/projects/99", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing project: %d", w.Code)
	}
}

func TestApply(t *testing.T) {
	valid := models.ApplyInput{CoverLetter: coverLetter, ProposedRate: 2000, EstimatedDuration: 3}

	t.Run("Submitted", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap(t)
		f.login(t, "ana@example.com")

		w := f.do(t, http.MethodPost, "/projects/1/apply-intent", nil)
		if w.Code != http.StatusOK || decodeBody[map[string]string](t, w)["location"] != "/projects/1/apply" {
			t.Fatalf("apply intent: %d %s", w.Code, w.Body.String())
		}
		w = f.do(t, http.MethodPost, "/projects/1/apply", valid)
		if w.Code != http.StatusCreated {
			t.Fatalf("apply: %d %s", w.Code, w.Body.String())
		}
		if _, applies, _ := f.mocks.Applications.Calls(); applies != 1 {
			t.Fatalf("expected one submission, got %d", applies)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.mocks.Applications.Apps = []models.ProjectApplication{
			{ID: 7, ProjectID: 1, FreelancerID: 2, Status: models.ApplicationStatusMarkedForInterview},
		}
		f.bootstrap(t)
		f.login(t, "ana@example.com")

		if w := f.do(t, http.MethodPost, "/projects/1/apply-intent", nil); w.Code != http.StatusConflict {
			t.Fatalf("apply intent on applied project: %d", w.Code)
		}
		if w := f.do(t, http.MethodPost, "/projects/1/apply", valid); w.Code != http.StatusConflict {
			t.Fatalf("duplicate apply: %d %s", w.Code, w.Body.String())
		}
		if _, applies, _ := f.mocks.Applications.Calls(); applies != 0 {
			t.Fatalf("duplicate reached the API")
		}
	})

	t.Run("RateOutsideBudget", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap(t)
		f.login(t, "ana@example.com")

		in := valid
		in.ProposedRate = 9000
		w := f.do(t, http.MethodPost, "/projects/1/apply", in)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("over budget: %d", w.Code)
		}
		if got := decodeBody[errorBody](t, w).Fields["proposedRate"]; got != "Proposed rate must be within the project budget of 5000" {
			t.Fatalf("proposedRate message = %q", got)
		}
	})
}
