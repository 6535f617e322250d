package deque

// Storage decides how a Deque initializes and tears down its slots. It is
// fixed when the Deque is built.
//
// Every element stored in a Deque leaves it exactly one way: it is handed back
// to the caller (Pop*, which calls Vacate on the emptied slot) or it is
// destroyed in place (Remove*, Drop*, Clear, SetCount, Release, which call
// Destroy). Slots whose value was relocated by Insert or Remove* are passed to
// Vacate as well.
type Storage[T any] interface {
	// Default returns the value of a default constructed element.
	Default() T
	// Destroy finishes the element in slot. The slot is not read afterwards.
	Destroy(slot *T)
	// Vacate is called on a slot whose value now lives elsewhere.
	Vacate(slot *T)
}

// TrivialStorage is meant for element types without references. Default is
// the zero value and vacated or destroyed slots are left untouched, the same
// trade-off as PopBack versus PopBackZero on a plain ring buffer.
type TrivialStorage[T any] struct{}

func (TrivialStorage[T]) Default() T {
	var zero T
	return zero
}

func (TrivialStorage[T]) Destroy(*T) {}

func (TrivialStorage[T]) Vacate(*T) {}

// ManagedStorage zeroes every slot it gives up so the garbage collector can
// reclaim what the element referenced. New, when set, builds default
// elements; Finalize, when set, runs once for every element destroyed inside
// the Deque. It is the default Storage.
type ManagedStorage[T any] struct {
	New      func() T
	Finalize func(T)
}

func (s ManagedStorage[T]) Default() T {
	if s.New != nil {
		return s.New()
	}
	var zero T
	return zero
}

func (s ManagedStorage[T]) Destroy(slot *T) {
	if s.Finalize != nil {
		s.Finalize(*slot)
	}
	var zero T
	*slot = zero
}

func (s ManagedStorage[T]) Vacate(slot *T) {
	var zero T
	*slot = zero
}
