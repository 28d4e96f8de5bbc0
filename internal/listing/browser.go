package listing

import (
	"sync"
	"time"

	"github.com/garnizeh/devbuddy/internal/filter"
	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/internal/policy"
	"github.com/garnizeh/devbuddy/internal/search"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

type BrowserOptions struct {
	Options
	// Quiet is the search debounce interval; zero uses search.DefaultQuiet.
	Quiet time.Duration
	Now   func() time.Time
}

// Browser is one project browsing screen: the filter bridge, the search
// debouncer and the controller wired together. Keystrokes settle into the
// search text, filter changes go straight to the controller, and Reset
// clears both in one fetch.
type Browser struct {
	bridge   *filter.Bridge
	debounce *search.Debouncer
	ctrl     *Controller

	mu   sync.Mutex
	text string
}

func NewBrowser(projects repository.ProjectRepo, apps repository.ApplicationRepo, scope policy.Scope, n notify.Notifier, opts BrowserOptions) *Browser {
	quiet := opts.Quiet
	if quiet <= 0 {
		quiet = search.DefaultQuiet
	}
	b := &Browser{ctrl: NewController(projects, apps, scope, n, opts.Options)}
	b.debounce = search.New(quiet, b.ctrl.SetSearch)
	b.bridge = filter.NewBridge(b.filterChanged, opts.Now)
	return b
}

func (b *Browser) filterChanged(ch filter.Change) {
	if !ch.Reset {
		b.ctrl.SetFilter(ch.Filter)
		return
	}
	b.debounce.Cancel()
	b.mu.Lock()
	b.text = ""
	b.mu.Unlock()
	empty := ""
	b.ctrl.Apply(Update{Filter: &ch.Filter, Search: &empty})
}

// Type records the raw search input; the controller sees it once it settles.
func (b *Browser) Type(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
	b.debounce.Push(text)
}

// SearchText is the raw, possibly unsettled, search input.
func (b *Browser) SearchText() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Reset clears filters, selectors and search text.
func (b *Browser) Reset() { b.bridge.Reset() }

func (b *Browser) Filters() *filter.Bridge { return b.bridge }

func (b *Browser) Controller() *Controller { return b.ctrl }

// Close stops the debouncer first so no settled text reaches a closed
// controller.
func (b *Browser) Close() {
	b.debounce.Close()
	b.ctrl.Close()
}
