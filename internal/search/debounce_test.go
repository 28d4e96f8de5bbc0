package search_test

import (
	"sync"
	"testing"
	"time"

	"github.com/garnizeh/devbuddy/internal/search"
)

type collector struct {
	mu  sync.Mutex
	got []string
	ch  chan string
}

func newCollector() *collector { return &collector{ch: make(chan string, 16)} }

func (c *collector) emit(v string) {
	c.mu.Lock()
	c.got = append(c.got, v)
	c.mu.Unlock()
	c.ch <- v
}

func (c *collector) values() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func TestDebouncer_LastValueWins(t *testing.T) {
	c := newCollector()
	d := search.New(150*time.Millisecond, c.emit)
	defer d.Close()

	for _, v := range []string{"g", "go", "gol", "gola", "golang"} {
		d.Push(v)
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case v := <-c.ch:
		if v != "golang" {
			t.Fatalf("emitted %q, want golang", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("no value emitted")
	}

	time.Sleep(200 * time.Millisecond)
	if got := c.values(); len(got) != 1 {
		t.Fatalf("expected exactly one emission, got %v", got)
	}
	if d.Pending() {
		t.Fatalf("nothing should be pending after emission")
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	c := newCollector()
	d := search.New(20*time.Millisecond, c.emit)
	defer d.Close()

	d.Push("react")
	if v := <-c.ch; v != "react" {
		t.Fatalf("first burst emitted %q", v)
	}
	d.Push("vue")
	if v := <-c.ch; v != "vue" {
		t.Fatalf("second burst emitted %q", v)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	c := newCollector()
	d := search.New(20*time.Millisecond, c.emit)
	defer d.Close()

	d.Push("discard me")
	if !d.Pending() {
		t.Fatalf("expected a pending value")
	}
	d.Cancel()
	if d.Pending() {
		t.Fatalf("Cancel should clear the pending value")
	}

	time.Sleep(60 * time.Millisecond)
	if got := c.values(); len(got) != 0 {
		t.Fatalf("cancelled value was emitted: %v", got)
	}
}

func TestDebouncer_NoEmitAfterClose(t *testing.T) {
	c := newCollector()
	d := search.New(20*time.Millisecond, c.emit)

	d.Push("late")
	d.Close()
	d.Push("after close")

	time.Sleep(60 * time.Millisecond)
	if got := c.values(); len(got) != 0 {
		t.Fatalf("emitted after Close: %v", got)
	}
	// idempotent
	d.Close()
}

func TestDebouncer_DefaultQuiet(t *testing.T) {
	d := search.New(0, func(string) {})
	defer d.Close()
	if d.Pending() {
		t.Fatalf("new debouncer should be idle")
	}
}
