// Package notify keeps the user-visible notifications (toasts) of a session.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultHistory is how many notifications a Center keeps.
const DefaultHistory = 50

type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier is what components post to. *Center implements it.
type Notifier interface {
	Notify(level Level, title, message string) Notification
}

// Center stores notifications newest last and fans them out to subscribers.
type Center struct {
	mu     sync.Mutex
	limit  int
	items  []Notification
	subs   map[int]func(Notification)
	nextID int
	now    func() time.Time
}

// NewCenter returns a Center keeping at most limit notifications; limit <= 0
// uses DefaultHistory.
func NewCenter(limit int) *Center {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &Center{limit: limit, subs: map[int]func(Notification){}, now: time.Now}
}

func (c *Center) Notify(level Level, title, message string) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Title:   title,
		Message: message,
		At:      c.now().UTC(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if over := len(c.items) - c.limit; over > 0 {
		c.items = append([]Notification(nil), c.items[over:]...)
	}
	subs := make([]func(Notification), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
	return n
}

func (c *Center) Info(title, message string) Notification {
	return c.Notify(LevelInfo, title, message)
}

func (c *Center) Success(title, message string) Notification {
	return c.Notify(LevelSuccess, title, message)
}

func (c *Center) Error(title, message string) Notification {
	return c.Notify(LevelError, title, message)
}

// List returns a copy of the retained notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification{}, c.items...)
}

// Dismiss removes the notification with id and reports whether it existed.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every notification.
func (c *Center) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Subscribe registers fn for every new notification. The returned func
// unregisters it.
func (c *Center) Subscribe(fn func(Notification)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Discard drops every notification. Useful where nobody is listening.
type Discard struct{}

func (Discard) Notify(level Level, title, message string) Notification {
	return Notification{Level: level, Title: title, Message: message}
}
