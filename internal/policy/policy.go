// Package policy decides who may see which location of the app.
package policy

import (
	"slices"
	"strconv"
	"strings"

	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/pkg/models"
)

const (
	LandingPath = "/"
	LoginPath   = "/login"
	// HomePath is where signed-in users land and where soft denials go.
	HomePath = "/dashboard"
)

type Outcome int

const (
	Loading Outcome = iota
	Render
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return "loading"
}

type Decision struct {
	Outcome  Outcome
	Location string
}

// Requirement is the guard declared by a route. RequireAuth false means a
// public-only location such as the login screen.
type Requirement struct {
	RequireAuth  bool
	AllowedRoles []models.UserType
}

var (
	PublicOnly     = Requirement{}
	Authenticated  = Requirement{RequireAuth: true}
	FreelancerOnly = Requirement{RequireAuth: true, AllowedRoles: []models.UserType{models.UserTypeFreelancer}}
	ClientOnly     = Requirement{RequireAuth: true, AllowedRoles: []models.UserType{models.UserTypeClient}}
)

// Decide applies a route requirement to a session snapshot. An uninitialized
// session is treated as still resolving.
func Decide(st session.State, req Requirement) Decision {
	if !st.Resolved() {
		return Decision{Outcome: Loading}
	}
	u := st.User
	if !req.RequireAuth {
		if u != nil {
			return Decision{Outcome: Redirect, Location: HomePath}
		}
		return Decision{Outcome: Render}
	}
	if u == nil {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	if len(req.AllowedRoles) > 0 && !slices.Contains(req.AllowedRoles, u.UserType) {
		return Decision{Outcome: Redirect, Location: HomePath}
	}
	return Decision{Outcome: Render}
}

// Route is one navigable location. Unguarded routes render for everybody.
type Route struct {
	Name      string
	Pattern   string
	Unguarded bool
	Require   Requirement
}

// Routes is the navigation contract. Literal segments are listed before
// parameterised ones so /projects/create never matches /projects/:id.
var Routes = []Route{
	{Name: "landing", Pattern: "/", Unguarded: true},
	{Name: "login", Pattern: "/login", Require: PublicOnly},
	{Name: "register", Pattern: "/register", Require: PublicOnly},
	{Name: "dashboard", Pattern: "/dashboard", Require: Authenticated},
	{Name: "profile", Pattern: "/profile", Require: Authenticated},
	{Name: "applications", Pattern: "/applications", Require: FreelancerOnly},
	{Name: "projects", Pattern: "/projects", Require: Authenticated},
	{Name: "project-create", Pattern: "/projects/create", Require: ClientOnly},
	{Name: "project-manage", Pattern: "/projects/manage", Require: ClientOnly},
	{Name: "project-details", Pattern: "/projects/:id", Require: Authenticated},
	{Name: "project-apply", Pattern: "/projects/:id/apply", Require: FreelancerOnly},
	{Name: "project-applications", Pattern: "/projects/:id/applications", Require: ClientOnly},
}

// Match finds the route for path and its parameters.
func Match(path string) (Route, map[string]string, bool) {
	segs := split(path)
	for _, r := range Routes {
		if params, ok := matchPattern(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

// Evaluate decides a location. Unknown locations go to the landing page.
func Evaluate(st session.State, path string) Decision {
	r, _, ok := Match(path)
	if !ok {
		return Decision{Outcome: Redirect, Location: LandingPath}
	}
	if r.Unguarded {
		return Decision{Outcome: Render}
	}
	return Decide(st, r.Require)
}

// ApplyPath is the application form location for a project.
func ApplyPath(projectID int64) string {
	return "/projects/" + strconv.FormatInt(projectID, 10) + "/apply"
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			params[name] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Scope restricts a project listing. A zero Scope is marketplace-wide.
// Freelancer marks listings that are annotated with the caller's own
// applications.
type Scope struct {
	ClientID   *int64
	Freelancer bool
}

// ListingScope derives the listing scope from the signed-in user: clients
// only ever list their own projects.
func ListingScope(u *models.User) Scope {
	if u.IsClient() {
		id := u.ID
		return Scope{ClientID: &id}
	}
	return Scope{Freelancer: u.IsFreelancer()}
}

func (s Scope) Owned() bool { return s.ClientID != nil }

func (s Scope) Apply(q *models.ProjectQuery) {
	if s.ClientID != nil {
		id := *s.ClientID
		q.UserID = &id
	}
}
