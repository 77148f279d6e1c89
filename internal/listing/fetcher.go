package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout bounds a single list request.
const DefaultTimeout = 30 * time.Second

// Result is one page of rows as returned by the backend.
type Result[T any] struct {
	Items      []T
	TotalCount int
	PageSize   int
}

// TotalPages is ceil(TotalCount / PageSize).
func (r Result[T]) TotalPages() int {
	return TotalPages(r.TotalCount, r.PageSize)
}

// Phase is the presentation state of a list.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseErrored:
		return "errored"
	default:
		return "idle"
	}
}

// State is what the fetcher knows about the list right now. Result holds
// the last successful page even while loading or after an error.
type State[T any] struct {
	Phase               Phase
	Query               Query
	Result              Result[T]
	HasData             bool
	Err                 error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// Loading reports whether a request is in flight.
func (s State[T]) Loading() bool { return s.Phase == PhaseLoading }

// Empty reports a successful load with no rows.
func (s State[T]) Empty() bool {
	return s.Phase == PhaseLoaded && len(s.Result.Items) == 0
}

// Fetcher sequences list requests so that only the latest one lands.
// Each Begin supersedes and cancels the previous request; Complete ignores
// any sequence number but the latest.
type Fetcher[T any] struct {
	mu      sync.Mutex
	timeout time.Duration
	seq     uint64
	cancel  context.CancelFunc
	stopped bool
	state   State[T]
}

// NewFetcher returns an idle Fetcher. A zero timeout uses DefaultTimeout.
func NewFetcher[T any](timeout time.Duration) *Fetcher[T] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher[T]{timeout: timeout}
}

// Begin starts a request for q and returns its context and sequence number.
func (f *Fetcher[T]) Begin(parent context.Context, q Query) (context.Context, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.seq++

	ctx, cancel := context.WithTimeout(parent, f.timeout)
	if f.stopped {
		cancel()
		return ctx, f.seq
	}
	f.cancel = cancel
	f.state.Phase = PhaseLoading
	f.state.Query = q
	return ctx, f.seq
}

// Complete applies the outcome of request seq. It returns false and changes
// nothing when seq has been superseded or the fetcher is stopped. On error
// the previous rows are kept.
func (f *Fetcher[T]) Complete(seq uint64, r Result[T], err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped || seq != f.seq {
		return false
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}

	f.state.LastUpdated = time.Now()
	if err != nil {
		f.state.Phase = PhaseErrored
		f.state.Err = err
		f.state.ConsecutiveFailures++
		return true
	}
	f.state.Phase = PhaseLoaded
	f.state.Result = Result[T]{Items: cloneItems(r.Items), TotalCount: r.TotalCount, PageSize: r.PageSize}
	f.state.HasData = true
	f.state.Err = nil
	f.state.ConsecutiveFailures = 0
	return true
}

// Snapshot returns a copy of the current state.
func (f *Fetcher[T]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.state
	snap.Result.Items = cloneItems(f.state.Result.Items)
	if f.state.Err != nil {
		snap.Err = fmt.Errorf("%w", f.state.Err)
	}
	return snap
}

// Stop cancels any in-flight request; later completions are ignored.
func (f *Fetcher[T]) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// IsSuperseded reports whether err came from a request cancelled by a newer
// one or by Stop, which callers should not surface.
func IsSuperseded(err error) bool {
	return errors.Is(err, context.Canceled)
}

func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

const maxBackoff = 30 * time.Second

// Backoff doubles base for each consecutive failure, capped at 30s.
func Backoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
