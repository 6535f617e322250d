package deque

import (
	"sync"

	"github.com/pkg/errors"
)

// Allocator hands out chunk buffers to a Deque. Allocate must return a slice
// of exactly n elements or an error. Deallocate receives every buffer back
// exactly once; the Deque never touches it afterwards.
//
// An Allocator is shared and outlives the deques using it. Deques do not
// synchronize their calls, so an Allocator shared across goroutines must be
// safe for concurrent use (see SafeAllocator).
type Allocator[T any] interface {
	Allocate(n int) ([]T, error)
	Deallocate(buf []T)
}

// HeapAllocator allocates chunks with make and leaves freeing to the garbage
// collector. It is the default Allocator and is safe for concurrent use.
type HeapAllocator[T any] struct{}

// Allocate returns a zeroed slice of n elements.
func (HeapAllocator[T]) Allocate(n int) ([]T, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrAllocation, "invalid chunk length %d", n)
	}
	return make([]T, n), nil
}

// Deallocate drops the reference to buf.
func (HeapAllocator[T]) Deallocate([]T) {}

// PoolAllocator recycles chunk buffers of a single length through a
// sync.Pool, which makes it safe for concurrent use. Buffers of any other
// length are dropped on Deallocate.
type PoolAllocator[T any] struct {
	pool sync.Pool
	n    int
}

// NewPoolAllocator creates a PoolAllocator for chunks of n elements.
func NewPoolAllocator[T any](n int) *PoolAllocator[T] {
	p := &PoolAllocator[T]{n: n}
	p.pool.New = func() any {
		buf := make([]T, n)
		return &buf
	}
	return p
}

// Allocate returns a recycled buffer when one is available. Recycled buffers
// are zeroed before they are handed out.
func (p *PoolAllocator[T]) Allocate(n int) ([]T, error) {
	if n != p.n {
		return nil, errors.Wrapf(ErrAllocation, "pool serves chunks of %d, asked for %d", p.n, n)
	}
	return *p.pool.Get().(*[]T), nil
}

// Deallocate clears buf and returns it to the pool.
func (p *PoolAllocator[T]) Deallocate(buf []T) {
	if len(buf) != p.n {
		return
	}
	clear(buf)
	p.pool.Put(&buf)
}

// TrackingAllocator wraps another Allocator, counts every call and optionally
// enforces a budget of live chunks. It is not safe for concurrent use; wrap
// it in a SafeAllocator to share it.
type TrackingAllocator[T any] struct {
	next     Allocator[T]
	budget   int
	allocs   int
	frees    int
	live     int
	peakLive int
	failures int
}

// NewTrackingAllocator wraps next, or a HeapAllocator when next is nil. A
// budget <= 0 means no limit on live chunks.
func NewTrackingAllocator[T any](next Allocator[T], budget int) *TrackingAllocator[T] {
	if next == nil {
		next = HeapAllocator[T]{}
	}
	return &TrackingAllocator[T]{next: next, budget: budget}
}

// Allocate fails with ErrAllocation once the budget is exhausted.
func (a *TrackingAllocator[T]) Allocate(n int) ([]T, error) {
	if a.budget > 0 && a.live >= a.budget {
		a.failures++
		return nil, errors.Wrapf(ErrAllocation, "budget of %d chunks exhausted", a.budget)
	}
	buf, err := a.next.Allocate(n)
	if err != nil {
		a.failures++
		return nil, err
	}
	a.allocs++
	a.live++
	a.peakLive = max(a.peakLive, a.live)
	return buf, nil
}

// Deallocate forwards buf to the wrapped allocator.
func (a *TrackingAllocator[T]) Deallocate(buf []T) {
	a.frees++
	a.live--
	a.next.Deallocate(buf)
}

// SetBudget changes the live chunk budget. Chunks already handed out are
// never revoked.
func (a *TrackingAllocator[T]) SetBudget(budget int) { a.budget = budget }

// Metrics returns a snapshot of the allocation counters.
func (a *TrackingAllocator[T]) Metrics() AllocatorMetrics {
	return AllocatorMetrics{
		Allocs:   a.allocs,
		Frees:    a.frees,
		Live:     a.live,
		PeakLive: a.peakLive,
		Failures: a.failures,
	}
}

// AllocatorMetrics contains the counters of a TrackingAllocator.
type AllocatorMetrics struct {
	Allocs   int // Successful Allocate calls
	Frees    int // Deallocate calls
	Live     int // Chunks handed out and not yet returned
	PeakLive int // Highest Live ever observed
	Failures int // Failed Allocate calls
}

// SafeAllocator is a mutex-protected wrapper around an Allocator so that
// deques owned by different goroutines can share it.
type SafeAllocator[T any] struct {
	mu sync.Mutex
	a  Allocator[T]
}

// NewSafeAllocator wraps a.
func NewSafeAllocator[T any](a Allocator[T]) *SafeAllocator[T] {
	return &SafeAllocator[T]{a: a}
}

// Allocate thread-safely forwards to the wrapped allocator.
func (s *SafeAllocator[T]) Allocate(n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(n)
}

// Deallocate thread-safely forwards to the wrapped allocator.
func (s *SafeAllocator[T]) Deallocate(buf []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Deallocate(buf)
}

// Do runs f with exclusive access to the wrapped allocator, e.g. to read
// the metrics of a TrackingAllocator.
func (s *SafeAllocator[T]) Do(f func(Allocator[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.a)
}
