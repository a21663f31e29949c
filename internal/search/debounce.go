package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the trailing-edge delay applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces rapid successive calls into one trailing-edge
// execution. Each call resets the timer; only the last function runs.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// Debounce schedules fn after the delay, cancelling any pending call.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush runs fn immediately and drops any pending call.
func (d *Debouncer) Flush(fn func()) {
	d.Cancel()
	fn()
}
