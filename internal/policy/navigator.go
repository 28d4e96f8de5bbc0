package policy

import (
	"sync"

	"github.com/garnizeh/devbuddy/internal/session"
)

// StateSource is the part of the session a Navigator reads.
type StateSource interface {
	State() session.State
	Subscribe(fn func(session.State)) func()
}

// Navigator tracks the current location and keeps it legal: it re-evaluates
// on every navigation and on every session change.
type Navigator struct {
	src        StateSource
	onRedirect func(from, to string)

	mu       sync.Mutex
	location string
	unsub    func()
}

// NewNavigator starts at the landing page. onRedirect may be nil.
func NewNavigator(src StateSource, onRedirect func(from, to string)) *Navigator {
	n := &Navigator{src: src, onRedirect: onRedirect, location: LandingPath}
	n.unsub = src.Subscribe(n.sessionChanged)
	return n
}

// Navigate moves to path and returns the decision for it. A redirect moves
// the navigator to the redirect target.
func (n *Navigator) Navigate(path string) Decision {
	return n.evaluate(n.src.State(), path)
}

func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Close stops following the session.
func (n *Navigator) Close() {
	n.mu.Lock()
	unsub := n.unsub
	n.unsub = nil
	n.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (n *Navigator) sessionChanged(st session.State) {
	n.evaluate(st, n.Location())
}

func (n *Navigator) evaluate(st session.State, path string) Decision {
	d := Evaluate(st, path)

	n.mu.Lock()
	from := path
	if d.Outcome == Redirect {
		n.location = d.Location
	} else {
		n.location = path
	}
	n.mu.Unlock()

	if d.Outcome == Redirect && n.onRedirect != nil {
		n.onRedirect(from, d.Location)
	}
	return d
}
