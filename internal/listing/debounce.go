package listing

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before search input is applied.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer publishes only the last value of a burst, once the input has
// been quiet for the delay. It is safe for concurrent use. Publishes never
// overlap and happen in Push order.
type Debouncer[T any] struct {
	mu      sync.Mutex
	pubMu   sync.Mutex
	delay   time.Duration
	publish func(T)
	timer   *time.Timer
	gen     uint64
	value   T
	pending bool
	closed  bool
}

// NewDebouncer returns a Debouncer calling publish on its own goroutine.
func NewDebouncer[T any](delay time.Duration, publish func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{delay: delay, publish: publish}
}

// Push restarts the quiet period with v as the pending value.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.gen++
	gen := d.gen
	d.value = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.pubMu.Lock()
	d.mu.Unlock()
	defer d.pubMu.Unlock()
	d.publish(v)
}

// Flush publishes the pending value now, on the caller's goroutine, and
// reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.closed || !d.pending {
		d.mu.Unlock()
		return false
	}
	d.gen++
	v := d.take()
	d.pubMu.Lock()
	d.mu.Unlock()
	defer d.pubMu.Unlock()
	d.publish(v)
	return true
}

// take clears the pending value. d.mu must be held.
func (d *Debouncer[T]) take() T {
	v := d.value
	var zero T
	d.value = zero
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v
}

// Pending reports whether a value is waiting for its quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending && !d.closed
}

// Close discards any pending value. Nothing is published afterwards.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Settler is the single-goroutine form of Debouncer for event loops that
// schedule their own timers: Touch records a value and returns a token to
// arm a timer with; Settle yields the value only for the latest token.
type Settler[T any] struct {
	gen     uint64
	value   T
	pending bool
	closed  bool
}

// Touch stores v and returns the token for this keystroke.
func (s *Settler[T]) Touch(v T) uint64 {
	s.gen++
	s.value = v
	s.pending = !s.closed
	return s.gen
}

// Settle returns the pending value when gen is still the latest token.
// A value settles at most once.
func (s *Settler[T]) Settle(gen uint64) (T, bool) {
	var zero T
	if s.closed || !s.pending || gen != s.gen {
		return zero, false
	}
	s.pending = false
	return s.value, true
}

// Reset drops the pending value but keeps the token sequence, so tokens
// issued before the reset never settle a later value.
func (s *Settler[T]) Reset() {
	var zero T
	s.value = zero
	s.pending = false
}

// Close drops the pending value.
func (s *Settler[T]) Close() {
	s.closed = true
	s.pending = false
}
