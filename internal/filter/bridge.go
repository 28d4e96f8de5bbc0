package filter

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

var ErrUnknownShortcut = errors.New("unknown filter shortcut")

type StatusShortcut string

const (
	StatusAll        StatusShortcut = "all"
	StatusPublished  StatusShortcut = "published"
	StatusInProgress StatusShortcut = "in_progress"
	StatusCompleted  StatusShortcut = "completed"
	// StatusCustom is reported when the canonical status has no shortcut.
	StatusCustom StatusShortcut = "custom"
)

// Valid reports whether s can be set as a quick status.
func (s StatusShortcut) Valid() bool {
	switch s {
	case StatusAll, StatusPublished, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type BudgetShortcut string

const (
	BudgetAll        BudgetShortcut = "all"
	BudgetUpTo1000   BudgetShortcut = "0-1000"
	Budget1000To5000 BudgetShortcut = "1000-5000"
	BudgetOver5000   BudgetShortcut = "5000+"
	// BudgetCustom is reported when the canonical bounds match no bucket.
	BudgetCustom BudgetShortcut = "custom"
)

type bounds struct{ min, max *float64 }

var budgetBuckets = map[BudgetShortcut]bounds{
	BudgetAll:        {},
	BudgetUpTo1000:   {max: Float(1000)},
	Budget1000To5000: {min: Float(1000), max: Float(5000)},
	BudgetOver5000:   {min: Float(5000)},
}

// Valid reports whether s can be set as a quick budget.
func (s BudgetShortcut) Valid() bool {
	_, ok := budgetBuckets[s]
	return ok
}

// Change is emitted once per committed update. Reset also asks the consumer
// to clear its search text.
type Change struct {
	Filter Filter
	Reset  bool
}

// PanelFields holds the advanced filter form as the user edits it.
type PanelFields struct {
	Status         string `json:"status"`
	BudgetMin      string `json:"budgetMin"`
	BudgetMax      string `json:"budgetMax"`
	DeadlineBefore string `json:"deadlineBefore"`
}

// Bridge owns the canonical filter of a listing. Quick shortcuts and the
// advanced panel both read from and write to it; every write is validated
// and emitted to the sink. The sink runs under the bridge lock and must not
// call back into the Bridge.
type Bridge struct {
	mu        sync.Mutex
	filter    Filter
	panelOpen bool
	now       func() time.Time
	sink      func(Change)
}

// NewBridge creates a bridge with an empty filter. A nil now uses time.Now.
func NewBridge(sink func(Change), now func() time.Time) *Bridge {
	if now == nil {
		now = time.Now
	}
	if sink == nil {
		sink = func(Change) {}
	}
	return &Bridge{now: now, sink: sink}
}

// Filter returns the canonical filter.
func (b *Bridge) Filter() Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// QuickStatus derives the status selector from the canonical filter.
func (b *Bridge) QuickStatus() StatusShortcut {
	b.mu.Lock()
	defer b.mu.Unlock()
	return statusShortcut(b.filter)
}

// QuickBudget derives the budget selector from the canonical filter.
func (b *Bridge) QuickBudget() BudgetShortcut {
	b.mu.Lock()
	defer b.mu.Unlock()
	return budgetShortcut(b.filter)
}

func statusShortcut(f Filter) StatusShortcut {
	if f.Status == nil {
		return StatusAll
	}
	switch s := StatusShortcut(*f.Status); s {
	case StatusPublished, StatusInProgress, StatusCompleted:
		return s
	}
	return StatusCustom
}

func budgetShortcut(f Filter) BudgetShortcut {
	for name, bb := range budgetBuckets {
		if eqPtr(f.BudgetMin, bb.min) && eqPtr(f.BudgetMax, bb.max) {
			return name
		}
	}
	return BudgetCustom
}

func (b *Bridge) SetQuickStatus(s StatusShortcut) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.filter
	switch s {
	case StatusAll:
		next.Status = nil
	case StatusPublished, StatusInProgress, StatusCompleted:
		st := models.ProjectStatus(s)
		next.Status = &st
	default:
		return ErrUnknownShortcut
	}
	b.commit(next, false)
	return nil
}

func (b *Bridge) SetQuickBudget(s BudgetShortcut) error {
	bb, ok := budgetBuckets[s]
	if !ok {
		return ErrUnknownShortcut
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.filter
	next.BudgetMin = finite(bb.min)
	next.BudgetMax = finite(bb.max)
	b.commit(next, false)
	return nil
}

// OpenPanel opens the advanced panel seeded from the canonical filter.
func (b *Bridge) OpenPanel() PanelFields {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panelOpen = true
	return panelFrom(b.filter)
}

func (b *Bridge) PanelOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.panelOpen
}

// ClosePanel discards the panel without touching the filter.
func (b *Bridge) ClosePanel() {
	b.mu.Lock()
	b.panelOpen = false
	b.mu.Unlock()
}

// ApplyPanel replaces the canonical filter with the panel contents and
// closes the panel. Fields that do not parse are dropped.
func (b *Bridge) ApplyPanel(p PanelFields) Filter {
	c := Candidate{HasDeadlineBefore: p.DeadlineBefore}
	if st := strings.TrimSpace(p.Status); st != "" && st != string(StatusAll) {
		c.Status = st
	}
	c.BudgetMin = parseAmount(p.BudgetMin)
	c.BudgetMax = parseAmount(p.BudgetMax)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.panelOpen = false
	b.commitCandidate(c, false)
	return b.filter
}

// Reset clears the filter, both selectors and the search text in a single
// change.
func (b *Bridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panelOpen = false
	b.commit(Filter{}, true)
}

// Remove drops one active field.
func (b *Bridge) Remove(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commit(b.filter.Without(key), false)
}

func (b *Bridge) commit(next Filter, reset bool) {
	b.commitCandidate(next.Candidate(), reset)
}

func (b *Bridge) commitCandidate(c Candidate, reset bool) {
	b.filter = Validate(c, b.now())
	b.sink(Change{Filter: b.filter, Reset: reset})
}

func panelFrom(f Filter) PanelFields {
	p := PanelFields{Status: string(StatusAll)}
	if f.Status != nil {
		p.Status = string(*f.Status)
	}
	if f.BudgetMin != nil {
		p.BudgetMin = strconv.FormatFloat(*f.BudgetMin, 'f', -1, 64)
	}
	if f.BudgetMax != nil {
		p.BudgetMax = strconv.FormatFloat(*f.BudgetMax, 'f', -1, 64)
	}
	if f.HasDeadlineBefore != nil {
		p.DeadlineBefore = f.HasDeadlineBefore.UTC().Format(time.RFC3339)
	}
	return p
}

func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
