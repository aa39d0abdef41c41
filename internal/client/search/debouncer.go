package search

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid text changes: fire runs once with the latest text
// after delay has passed without another change. It is safe for concurrent
// use; fire runs on the timer goroutine (or the Flush caller).
type Debouncer struct {
	delay time.Duration
	fire  func(text string)

	mu      sync.Mutex
	current string
	timer   *time.Timer
	seq     uint64
	pending bool
	stopped bool
}

// NewDebouncer starts with initial as the current value. The initial value
// never fires.
func NewDebouncer(initial string, delay time.Duration, fire func(text string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fire: fire, current: initial}
}

// Set records a new value and restarts the quiet period. Setting the current
// value again is not a change.
func (d *Debouncer) Set(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || text == d.current {
		return
	}
	d.current = text
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fireIfCurrent(seq) })
}

func (d *Debouncer) fireIfCurrent(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	text := d.current
	d.mu.Unlock()
	d.fire(text)
}

// Flush fires immediately when a change is pending and reports whether it did.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.pending = false
	text := d.current
	d.mu.Unlock()
	d.fire(text)
	return true
}

// Stop cancels a pending fire; later Set calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Value returns the latest text, fired or not.
func (d *Debouncer) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
