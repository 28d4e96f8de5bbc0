// Package filter normalizes project listing filters and maps the quick
// shortcut selectors onto them.
package filter

import (
	"math"
	"strings"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

// Field keys used by Remove and the active filter badges.
const (
	KeyStatus            = "status"
	KeyBudgetMin         = "budgetMin"
	KeyBudgetMax         = "budgetMax"
	KeyHasDeadlineBefore = "hasDeadlineBefore"
)

// FilterableStatuses are the project statuses a listing may be filtered by.
// Drafts are never visible to other users so they are not a filter value.
var FilterableStatuses = []models.ProjectStatus{
	models.ProjectStatusPublished,
	models.ProjectStatusInProgress,
	models.ProjectStatusCompleted,
	models.ProjectStatusCancelled,
}

// Candidate is an unvalidated filter as it arrives from a form or a query
// string.
type Candidate struct {
	Status            string   `json:"status,omitempty"`
	BudgetMin         *float64 `json:"budgetMin,omitempty"`
	BudgetMax         *float64 `json:"budgetMax,omitempty"`
	HasDeadlineBefore string   `json:"hasDeadlineBefore,omitempty"`
}

// Filter is the canonical, validated filter. Nil fields are absent.
type Filter struct {
	Status            *models.ProjectStatus `json:"status,omitempty"`
	BudgetMin         *float64              `json:"budgetMin,omitempty"`
	BudgetMax         *float64              `json:"budgetMax,omitempty"`
	HasDeadlineBefore *time.Time            `json:"hasDeadlineBefore,omitempty"`
}

// Validate returns a filter containing only the fields of c that pass
// validation at instant now. Invalid fields are dropped silently.
func Validate(c Candidate, now time.Time) Filter {
	var f Filter

	lo, hi := finite(c.BudgetMin), finite(c.BudgetMax)
	if lo != nil && hi != nil && *lo > *hi {
		lo, hi = hi, lo
	}
	if lo != nil && *lo >= 0 {
		f.BudgetMin = lo
	}
	if hi != nil && *hi > 0 {
		f.BudgetMax = hi
	}

	if s := models.ProjectStatus(strings.TrimSpace(c.Status)); filterable(s) {
		f.Status = &s
	}

	if ts, ok := ParseDeadline(c.HasDeadlineBefore); ok && ts.After(now) {
		f.HasDeadlineBefore = &ts
	}

	return f
}

// ParseDeadline accepts an RFC 3339 timestamp or a calendar date
// (YYYY-MM-DD, read as midnight UTC).
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), true
	}
	if ts, err := time.Parse(time.DateOnly, s); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}

func filterable(s models.ProjectStatus) bool {
	for _, v := range FilterableStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	cp := *v
	return &cp
}

// Candidate converts f back into its unvalidated form.
func (f Filter) Candidate() Candidate {
	var c Candidate
	if f.Status != nil {
		c.Status = string(*f.Status)
	}
	c.BudgetMin = finite(f.BudgetMin)
	c.BudgetMax = finite(f.BudgetMax)
	if f.HasDeadlineBefore != nil {
		c.HasDeadlineBefore = f.HasDeadlineBefore.UTC().Format(time.RFC3339Nano)
	}
	return c
}

func (f Filter) IsEmpty() bool { return f.Count() == 0 }

// Count returns the number of active fields.
func (f Filter) Count() int { return len(f.Keys()) }

// Keys lists the active fields in display order.
func (f Filter) Keys() []string {
	var keys []string
	if f.Status != nil {
		keys = append(keys, KeyStatus)
	}
	if f.BudgetMin != nil {
		keys = append(keys, KeyBudgetMin)
	}
	if f.BudgetMax != nil {
		keys = append(keys, KeyBudgetMax)
	}
	if f.HasDeadlineBefore != nil {
		keys = append(keys, KeyHasDeadlineBefore)
	}
	return keys
}

// Without returns a copy of f with the named field removed. Unknown keys
// leave f unchanged.
func (f Filter) Without(key string) Filter {
	switch key {
	case KeyStatus:
		f.Status = nil
	case KeyBudgetMin:
		f.BudgetMin = nil
	case KeyBudgetMax:
		f.BudgetMax = nil
	case KeyHasDeadlineBefore:
		f.HasDeadlineBefore = nil
	}
	return f
}

// Equal reports whether both filters select the same projects.
func (f Filter) Equal(o Filter) bool {
	return eqPtr(f.Status, o.Status) &&
		eqPtr(f.BudgetMin, o.BudgetMin) &&
		eqPtr(f.BudgetMax, o.BudgetMax) &&
		eqTime(f.HasDeadlineBefore, o.HasDeadlineBefore)
}

// Apply copies the active fields into a listing query.
func (f Filter) Apply(q *models.ProjectQuery) {
	q.Status = f.Status
	q.BudgetMin = f.BudgetMin
	q.BudgetMax = f.BudgetMax
	q.HasDeadlineBefore = f.HasDeadlineBefore
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Float is a convenience for building candidates.
func Float(v float64) *float64 { return &v }
