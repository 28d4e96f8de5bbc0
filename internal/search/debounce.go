// Package search buffers free-text query input until it settles.
package search

import (
	"sync"
	"time"
)

// DefaultQuiet is the quiet interval used when none is configured.
const DefaultQuiet = 500 * time.Millisecond

// Debouncer emits the last pushed value once no new value has arrived for
// the quiet interval. At most one emission is pending at any time.
type Debouncer struct {
	quiet time.Duration
	emit  func(string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	latest  string
	pending bool
	closed  bool

	// held while emit runs so Close can wait for it
	emitMu sync.Mutex
}

// New returns a debouncer that calls emit with settled values. emit runs on
// a timer goroutine and must not call Close.
func New(quiet time.Duration, emit func(string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{quiet: quiet, emit: emit}
}

// Push records a raw value and restarts the quiet period.
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.latest = v
	d.pending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if d.closed || !d.pending || seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.latest
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.emit(v)
}

// Pending reports whether a value is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops the pending value, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Close cancels any pending value and waits for a running emission to
// finish. Nothing is emitted after Close returns.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.stopLocked()
	d.mu.Unlock()

	d.emitMu.Lock()
	d.emitMu.Unlock()
}

func (d *Debouncer) stopLocked() {
	d.pending = false
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
