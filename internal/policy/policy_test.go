package policy_test

import (
	"context"
	"testing"

	"github.com/garnizeh/devbuddy/internal/policy"
	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository/mock"
)

var (
	client     = &models.User{ID: 1, UserType: models.UserTypeClient}
	freelancer = &models.User{ID: 2, UserType: models.UserTypeFreelancer}
)

func TestDecide_Table(t *testing.T) {
	states := map[string]session.State{
		"uninitialized":   {},
		"resolving":       {Phase: session.PhaseResolving},
		"unauthenticated": {Phase: session.PhaseResolved},
		"client":          {Phase: session.PhaseResolved, User: client},
		"freelancer":      {Phase: session.PhaseResolved, User: freelancer},
	}
	reqs := map[string]policy.Requirement{
		"public":     policy.PublicOnly,
		"auth":       policy.Authenticated,
		"client":     policy.ClientOnly,
		"freelancer": policy.FreelancerOnly,
	}
	want := map[string]map[string]policy.Decision{
		"uninitialized": {
			"public": {Outcome: policy.Loading}, "auth": {Outcome: policy.Loading},
			"client": {Outcome: policy.Loading}, "freelancer": {Outcome: policy.Loading},
		},
		"resolving": {
			"public": {Outcome: policy.Loading}, "auth": {Outcome: policy.Loading},
			"client": {Outcome: policy.Loading}, "freelancer": {Outcome: policy.Loading},
		},
		"unauthenticated": {
			"public":     {Outcome: policy.Render},
			"auth":       {Outcome: policy.Redirect, Location: policy.LoginPath},
			"client":     {Outcome: policy.Redirect, Location: policy.LoginPath},
			"freelancer": {Outcome: policy.Redirect, Location: policy.LoginPath},
		},
		"client": {
			"public":     {Outcome: policy.Redirect, Location: policy.HomePath},
			"auth":       {Outcome: policy.Render},
			"client":     {Outcome: policy.Render},
			"freelancer": {Outcome: policy.Redirect, Location: policy.HomePath},
		},
		"freelancer": {
			"public":     {Outcome: policy.Redirect, Location: policy.HomePath},
			"auth":       {Outcome: policy.Render},
			"client":     {Outcome: policy.Redirect, Location: policy.HomePath},
			"freelancer": {Outcome: policy.Render},
		},
	}

	for sName, st := range states {
		for rName, req := range reqs {
			got := policy.Decide(st, req)
			if got != want[sName][rName] {
				t.Errorf("Decide(%s, %s) = %+v, want %+v", sName, rName, got, want[sName][rName])
			}
		}
	}
}

func TestEvaluate_ClientVisitingLoginIsRedirected(t *testing.T) {
	st := session.State{Phase: session.PhaseResolved, User: client}
	for _, p := range []string{"/login", "/register"} {
		if d := policy.Evaluate(st, p); d.Outcome != policy.Redirect || d.Location != policy.HomePath {
			t.Fatalf("Evaluate(%s) = %+v", p, d)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path   string
		name   string
		params map[string]string
		ok     bool
	}{
		{"/", "landing", map[string]string{}, true},
		{"/projects", "projects", map[string]string{}, true},
		{"/projects/", "projects", map[string]string{}, true},
		{"/projects/create", "project-create", map[string]string{}, true},
		{"/projects/manage", "project-manage", map[string]string{}, true},
		{"/projects/42", "project-details", map[string]string{"id": "42"}, true},
		{"/projects/42/apply", "project-apply", map[string]string{"id": "42"}, true},
		{"/projects/42/applications", "project-applications", map[string]string{"id": "42"}, true},
		{"/applications", "applications", map[string]string{}, true},
		{"/nowhere", "", nil, false},
		{"/projects/42/edit", "", nil, false},
	}
	for _, tt := range tests {
		r, params, ok := policy.Match(tt.path)
		if ok != tt.ok || r.Name != tt.name {
			t.Errorf("Match(%q) = %q, %v; want %q, %v", tt.path, r.Name, ok, tt.name, tt.ok)
			continue
		}
		for k, v := range tt.params {
			if params[k] != v {
				t.Errorf("Match(%q) param %s = %q, want %q", tt.path, k, params[k], v)
			}
		}
	}
}

func TestEvaluate_RoleGatedRoutes(t *testing.T) {
	fl := session.State{Phase: session.PhaseResolved, User: freelancer}
	cl := session.State{Phase: session.PhaseResolved, User: client}
	anon := session.State{Phase: session.PhaseResolved}

	if d := policy.Evaluate(cl, "/projects/7/apply"); d.Location != policy.HomePath {
		t.Fatalf("client on apply route: %+v", d)
	}
	if d := policy.Evaluate(fl, "/projects/create"); d.Location != policy.HomePath {
		t.Fatalf("freelancer on create route: %+v", d)
	}
	if d := policy.Evaluate(fl, "/projects/7/apply"); d.Outcome != policy.Render {
		t.Fatalf("freelancer on apply route: %+v", d)
	}
	if d := policy.Evaluate(anon, "/"); d.Outcome != policy.Render {
		t.Fatalf("landing must render for anyone: %+v", d)
	}
	if d := policy.Evaluate(anon, "/missing"); d.Location != policy.LandingPath {
		t.Fatalf("unknown path: %+v", d)
	}
}

func TestListingScope(t *testing.T) {
	var q models.ProjectQuery
	policy.ListingScope(client).Apply(&q)
	if q.UserID == nil || *q.UserID != client.ID {
		t.Fatalf("client scope not applied: %+v", q)
	}

	q = models.ProjectQuery{}
	s := policy.ListingScope(freelancer)
	s.Apply(&q)
	if q.UserID != nil || s.Owned() || !s.Freelancer {
		t.Fatalf("freelancer listing must be unscoped: %+v", q)
	}
	if policy.ListingScope(nil).Owned() {
		t.Fatalf("nil user must be unscoped")
	}
}

func TestNavigator_LogoutReroutesToLogin(t *testing.T) {
	tokens := &mock.TokenStore{Token: "opaque"}
	sess := session.New(&mock.AuthRepo{MeUser: freelancer}, tokens, session.Options{})

	type hop struct{ from, to string }
	var hops []hop
	nav := policy.NewNavigator(sess, func(from, to string) { hops = append(hops, hop{from, to}) })
	defer nav.Close()

	if d := nav.Navigate("/applications"); d.Outcome != policy.Loading {
		t.Fatalf("expected loading before bootstrap, got %+v", d)
	}
	_ = sess.Bootstrap(context.Background())
	if nav.Location() != "/applications" || len(hops) != 0 {
		t.Fatalf("signed-in freelancer should stay: loc=%s hops=%v", nav.Location(), hops)
	}

	_ = sess.Logout(context.Background())
	if nav.Location() != policy.LoginPath {
		t.Fatalf("expected /login after logout, got %s", nav.Location())
	}
	if len(hops) != 1 || hops[0] != (hop{"/applications", policy.LoginPath}) {
		t.Fatalf("unexpected redirects: %v", hops)
	}
}

func TestApplyPath(t *testing.T) {
	if got := policy.ApplyPath(12); got != "/projects/12/apply" {
		t.Fatalf("ApplyPath = %q", got)
	}
}
