package deque

import "go.uber.org/zap"

// Option configures a Deque built by New.
type Option[T any] func(*Deque[T])

// WithAllocator makes the Deque get its chunks from a. The Deque does not own
// a, which must outlive it.
func WithAllocator[T any](a Allocator[T]) Option[T] {
	return func(d *Deque[T]) { d.alloc = a }
}

// WithStorage selects how slots are initialized and torn down. The default
// is ManagedStorage with no hooks.
func WithStorage[T any](s Storage[T]) Option[T] {
	return func(d *Deque[T]) { d.store = s }
}

// WithComparer sets the Comparer used by Contains, IndexOf, LastIndexOf,
// Remove, Equal and Sort.
func WithComparer[T any](c Comparer[T]) Option[T] {
	return func(d *Deque[T]) { d.cmp = c }
}

// WithPolicy replaces the default Policy.
func WithPolicy[T any](p Policy) Option[T] {
	return func(d *Deque[T]) { d.policy = p }
}

// WithLogger makes the Deque report directory reshapes, reclamation passes
// and compactions at debug level.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(d *Deque[T]) { d.log = l }
}
