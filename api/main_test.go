package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/devbuddy/api"
	"github.com/garnizeh/devbuddy/internal/catalog"
	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository/mock"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	api.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	goleak.VerifyTestMain(m)
}

const password = "secret1"

var coverLetter = strings.Repeat("I have shipped several dashboards like this. ", 2)

type fixture struct {
	mocks   *mock.Mocks
	session *session.Session
	notices *notify.Center
	app     *api.App
	router  http.Handler
}

// newFixture wires the app against in-memory collaborators. Carla (1) is a
// client owning project 1, Ana (2) a freelancer.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := mock.NewMocks()
	m.Auth.Password = password
	m.Auth.Users = map[string]models.User{
		"carla@example.com": {ID: 1, Email: "carla@example.com", Name: "Carla", UserType: models.UserTypeClient},
		"ana@example.com":   {ID: 2, Email: "ana@example.com", Name: "Ana", UserType: models.UserTypeFreelancer},
	}
	m.Applications.FreelancerID = 2
	deadline := time.Now().Add(30 * 24 * time.Hour).UTC()
	m.Projects.Projects = []models.Project{
		{ID: 1, Title: "React dashboard", Description: "Admin panel", BudgetMin: 1000, BudgetMax: 5000, Deadline: deadline, Status: models.ProjectStatusPublished, ClientID: 1},
		{ID: 2, Title: "Go API", Description: "Billing service", BudgetMin: 500, BudgetMax: 900, Deadline: deadline, Status: models.ProjectStatusPublished, ClientID: 3},
	}
	m.Skills.Catalog = []models.Skill{{ID: 1, Name: "Go"}, {ID: 2, Name: "React"}}

	sess := session.New(m.Auth, m.Tokens, session.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	notices := notify.NewCenter(0)
	app := api.NewApp(api.Deps{
		Session:        sess,
		Projects:       m.Projects,
		Applications:   m.Applications,
		Skills:         m.Skills,
		Profiles:       m.Auth,
		Catalog:        catalog.New(m.Skills, nil, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil))),
		Notices:        notices,
		PageSize:       9,
		SearchDebounce: 20 * time.Millisecond,
	})
	t.Cleanup(app.Close)
	return &fixture{mocks: m, session: sess, notices: notices, app: app, router: api.SetupRoutes("test", "now", app)}
}

func (f *fixture) bootstrap(t *testing.T) {
	t.Helper()
	if err := f.session.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T, email string) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/auth/login", models.LoginInput{Email: email, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}
