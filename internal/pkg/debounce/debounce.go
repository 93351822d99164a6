// Package debounce delays a function call until its trigger has been
// quiet for a configured interval. Used to keep search-as-you-type from
// issuing a request per keystroke.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay matches the search box behaviour: the query fires 300ms
// after the last keystroke.
const DefaultDelay = 300 * time.Millisecond

// Debouncer coalesces rapid calls into one. The zero value is not
// usable; call New.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
}

// New creates a debouncer. A non-positive delay falls back to
// DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Do schedules fn to run after the delay, cancelling any previously
// scheduled call. Only the last fn passed before the interval elapses
// runs.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.gen++
	// The closure keys on its generation, so a timer that already fired
	// past Stop cannot steal a freshly scheduled call.
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		fn := d.pending
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// Flush runs any pending call immediately instead of waiting out the
// delay.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.pending
	d.pending = nil
	d.gen++
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Stop cancels any pending call without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
