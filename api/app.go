package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/garnizeh/devbuddy/internal/catalog"
	"github.com/garnizeh/devbuddy/internal/listing"
	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/internal/policy"
	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

// Deps are the collaborators of the app server.
type Deps struct {
	Session        *session.Session
	Projects       repository.ProjectRepo
	Applications   repository.ApplicationRepo
	Skills         repository.SkillRepo
	Profiles       repository.ProfileRepo
	Catalog        *catalog.Catalog
	Notices        *notify.Center
	PageSize       int
	SearchDebounce time.Duration
}

// App serves the view state of the signed-in user. It owns at most one
// project browser, which is torn down whenever the identity changes.
type App struct {
	Deps
	reviewer  *workflow.Reviewer
	submitter *workflow.Submitter

	mu       sync.Mutex
	browser  *listing.Browser
	owner    int64
	teardown sync.WaitGroup
	unsub    func()
}

func NewApp(d Deps) *App {
	if d.Notices == nil {
		d.Notices = notify.NewCenter(0)
	}
	a := &App{
		Deps:      d,
		reviewer:  workflow.NewReviewer(d.Applications, d.Session, d.Notices, logger),
		submitter: workflow.NewSubmitter(d.Applications, d.Session, d.Notices, logger),
	}
	a.unsub = d.Session.Subscribe(a.sessionChanged)
	return a
}

func (a *App) sessionChanged(st session.State) {
	var id int64
	if st.User != nil {
		id = st.User.ID
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser != nil && a.owner != id {
		a.dropBrowserLocked()
	}
}

// dropBrowserLocked closes the browser off the calling goroutine: the
// session change may come from inside one of the browser's own fetches.
func (a *App) dropBrowserLocked() {
	b := a.browser
	a.browser = nil
	a.owner = 0
	a.teardown.Add(1)
	go func() {
		defer a.teardown.Done()
		b.Close()
	}()
}

// Browser returns the project browser of u, creating it on first use.
func (a *App) Browser(u *models.User) *listing.Browser {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.browser != nil && a.owner == u.ID {
		return a.browser
	}
	if a.browser != nil {
		a.dropBrowserLocked()
	}
	a.browser = listing.NewBrowser(a.Projects, a.Applications, policy.ListingScope(u), a.Notices, listing.BrowserOptions{
		Options: listing.Options{Limit: a.PageSize, Logger: logger},
		Quiet:   a.SearchDebounce,
	})
	a.owner = u.ID
	return a.browser
}

// Close stops following the session and tears the browser down.
func (a *App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
	a.mu.Lock()
	if a.browser != nil {
		a.dropBrowserLocked()
	}
	a.mu.Unlock()
	a.teardown.Wait()
}

// guard wraps h with the route requirement: a session still resolving
// answers 202, a refusal answers 302 to where the user belongs.
func (a *App) guard(req policy.Requirement, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := policy.Decide(a.Session.State(), req)
		switch d.Outcome {
		case policy.Loading:
			writeJSON(w, map[string]string{"state": "loading"}, http.StatusAccepted)
		case policy.Redirect:
			w.Header().Set("Location", d.Location)
			writeJSON(w, map[string]string{"redirect": d.Location}, http.StatusFound)
		default:
			h(w, r)
		}
	})
}

// user is the signed-in user of a guarded request.
func (a *App) user() *models.User {
	return a.Session.User()
}
