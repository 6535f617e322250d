package deque

import "cmp"

// Comparer supplies the ordering and equality used by searching, removing,
// comparing and sorting.
type Comparer[T any] interface {
	Less(a, b T) bool
	Equal(a, b T) bool
}

// Natural compares with the < and == operators.
type Natural[T cmp.Ordered] struct{}

func (Natural[T]) Less(a, b T) bool  { return cmp.Less(a, b) }
func (Natural[T]) Equal(a, b T) bool { return a == b }

// Comparable compares with ==. It has no ordering, so sorting with it panics.
type Comparable[T comparable] struct{}

func (Comparable[T]) Less(a, b T) bool  { panic("deque: Comparable has no ordering") }
func (Comparable[T]) Equal(a, b T) bool { return a == b }

// CompareFuncs adapts a pair of functions. A nil EqualFunc falls back to
// !Less(a, b) && !Less(b, a).
type CompareFuncs[T any] struct {
	LessFunc  func(a, b T) bool
	EqualFunc func(a, b T) bool
}

func (c CompareFuncs[T]) Less(a, b T) bool { return c.LessFunc(a, b) }

func (c CompareFuncs[T]) Equal(a, b T) bool {
	if c.EqualFunc != nil {
		return c.EqualFunc(a, b)
	}
	return !c.LessFunc(a, b) && !c.LessFunc(b, a)
}
