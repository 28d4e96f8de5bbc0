// Package listing reconciles the listing inputs (filter, settled search,
// page and the caller's scope) into fetches against the marketplace, and the
// fetched pages into view state.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/garnizeh/devbuddy/internal/filter"
	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/internal/policy"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

// DefaultLimit is the page size of a listing.
const DefaultLimit = 9

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("listing closed")

type Options struct {
	Limit  int
	Logger *slog.Logger
}

// Update changes several inputs at once and issues a single fetch. A new
// filter or search text moves back to page 1 unless Page is also set.
type Update struct {
	Filter *filter.Filter
	Search *string
	Page   *int
}

type inputs struct {
	filter filter.Filter
	search string
	page   int
}

func (in inputs) equal(o inputs) bool {
	return in.search == o.search && in.page == o.page && in.filter.Equal(o.filter)
}

// Controller owns the state of one project listing. Only the response to the
// most recently issued request may change the view; older responses are
// dropped even if they arrive last.
type Controller struct {
	projects repository.ProjectRepo
	apps     repository.ApplicationRepo
	scope    policy.Scope
	notifier notify.Notifier
	limit    int
	logger   *slog.Logger

	base  context.Context
	stop  context.CancelFunc
	wg    sync.WaitGroup
	pubMu sync.Mutex

	mu      sync.Mutex
	in      inputs
	seq     uint64
	cancel  context.CancelFunc
	idle    chan struct{}
	view    View
	subs    map[int]func(View)
	nextSub int
	closed  bool
}

// NewController builds a controller and issues the first fetch. apps may be
// nil when the scope is not a freelancer's.
func NewController(projects repository.ProjectRepo, apps repository.ApplicationRepo, scope policy.Scope, n notify.Notifier, opts Options) *Controller {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if n == nil {
		n = notify.Discard{}
	}
	base, stop := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	c := &Controller{
		projects: projects,
		apps:     apps,
		scope:    scope,
		notifier: n,
		limit:    opts.Limit,
		logger:   opts.Logger,
		base:     base,
		stop:     stop,
		in:       inputs{page: 1},
		idle:     idle,
		subs:     map[int]func(View){},
	}
	c.view = View{Items: []Item{}, Page: 1, Limit: c.limit, TotalPages: 1, ActiveFilters: []string{}}

	c.mu.Lock()
	c.refreshLocked()
	c.mu.Unlock()
	c.publish()
	return c
}

func (c *Controller) SetFilter(f filter.Filter) {
	c.Apply(Update{Filter: &f})
}

func (c *Controller) SetSearch(s string) {
	c.Apply(Update{Search: &s})
}

// SetPage moves to page p (1-based). Filters and search are kept.
func (c *Controller) SetPage(p int) {
	c.Apply(Update{Page: &p})
}

func (c *Controller) Apply(u Update) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := c.in
	if u.Filter != nil {
		next.filter = *u.Filter
		next.page = 1
	}
	if u.Search != nil {
		next.search = *u.Search
		next.page = 1
	}
	if u.Page != nil {
		next.page = max(*u.Page, 1)
	}
	if next.equal(c.in) {
		c.mu.Unlock()
		return
	}
	c.in = next
	c.refreshLocked()
	c.mu.Unlock()
	c.publish()
}

// Reload refetches the current inputs.
func (c *Controller) Reload() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.refreshLocked()
	c.mu.Unlock()
	c.publish()
}

// View returns a snapshot of the listing.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

// Filter returns the filter the listing currently uses.
func (c *Controller) Filter() filter.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.in.filter
}

// Subscribe registers fn for every view change. Callbacks run outside the
// controller lock.
func (c *Controller) Subscribe(fn func(View)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// WaitIdle blocks until the latest request has been applied.
func (c *Controller) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the in-flight request and waits for it to return. The view
// does not change afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.subs = map[int]func(View){}
	c.markIdleLocked()
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
}

// RequestApply is the freelancer's "apply" action. It returns the location
// of the application form, or ErrAlreadyApplied (with an info notice) when
// the caller already has a live application for the project.
func (c *Controller) RequestApply(ctx context.Context, projectID int64) (string, error) {
	if !c.scope.Freelancer {
		return "", workflow.ErrForbidden
	}

	c.mu.Lock()
	var known *Item
	for i := range c.view.Items {
		if c.view.Items[i].ID == projectID {
			it := c.view.Items[i]
			known = &it
			break
		}
	}
	c.mu.Unlock()

	applied := known != nil && known.Applied()
	if known == nil && c.apps != nil {
		existing, err := workflow.ExistingApplication(ctx, c.apps, projectID)
		if err != nil {
			return "", err
		}
		applied = existing != nil
	}
	if applied {
		c.notifier.Notify(notify.LevelInfo, "You have already applied to this project", "")
		return "", workflow.ErrAlreadyApplied
	}
	return policy.ApplyPath(projectID), nil
}

func (c *Controller) query() models.ProjectQuery {
	q := models.ProjectQuery{Page: c.in.page, Limit: c.limit, Search: c.in.search}
	c.in.filter.Apply(&q)
	c.scope.Apply(&q)
	return q
}

// refreshLocked starts the fetch for the current inputs and supersedes any
// fetch in flight.
func (c *Controller) refreshLocked() {
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel

	select {
	case <-c.idle:
		c.idle = make(chan struct{})
	default:
	}

	keys := c.in.filter.Keys()
	c.view.Loading = true
	c.view.Page = c.in.page
	c.view.Search = c.in.search
	c.view.ActiveFilters = keys
	c.view.HasActiveFilters = len(keys) > 0
	c.view.derive(c.scope.Owned())

	q := c.query()
	c.wg.Add(1)
	go c.fetch(ctx, seq, q)
}

func (c *Controller) fetch(ctx context.Context, seq uint64, q models.ProjectQuery) {
	defer c.wg.Done()

	page, err := c.projects.ListProjects(ctx, q)
	var mine []models.ProjectApplication
	if err == nil && c.scope.Freelancer && c.apps != nil {
		var aerr error
		if mine, aerr = c.apps.ListApplications(ctx, nil); aerr != nil {
			c.logger.Warn("listing: load own applications", slog.Any("err", aerr))
			mine = nil
		}
	}

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.logger.Error("listing: fetch projects", slog.Int("page", q.Page), slog.Any("err", err))
		c.view.Items = []Item{}
		c.view.Total = 0
		c.view.TotalPages = 1
		c.view.Failed = true
	} else {
		c.view.Items = annotate(page.Projects, mine)
		c.view.Total = page.Total
		c.view.TotalPages = max(page.TotalPages, 1)
		c.view.Failed = false
	}
	c.view.Loading = false
	c.view.derive(c.scope.Owned())
	c.cancel()
	c.cancel = nil
	c.markIdleLocked()
	c.mu.Unlock()

	if err != nil {
		c.notifier.Notify(notify.LevelError, "Failed to load projects", "")
	}
	c.publish()
}

func (c *Controller) markIdleLocked() {
	select {
	case <-c.idle:
	default:
		close(c.idle)
	}
}

func (c *Controller) publish() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	v := c.view.clone()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// annotate pairs each project with the caller's latest application to it.
func annotate(projects []models.Project, mine []models.ProjectApplication) []Item {
	byProject := make(map[int64]models.ProjectApplication, len(mine))
	for _, a := range mine {
		prev, seen := byProject[a.ProjectID]
		// a live application wins over a withdrawn one
		if !seen || prev.Status == models.ApplicationStatusWithdrawn {
			byProject[a.ProjectID] = a
		}
	}
	items := make([]Item, 0, len(projects))
	for _, p := range projects {
		it := Item{Project: p}
		if a, ok := byProject[p.ID]; ok {
			cp := a
			it.Application = &cp
		}
		items = append(items, it)
	}
	return items
}
