package deque

import (
	"cmp"
	"fmt"
	"iter"
	"math/bits"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Deque is a double-ended queue that can be used for either LIFO or FIFO
// ordering, or something in between.
//
// Elements live in fixed-size chunks reached through a directory of chunk
// handles. Pushing at either end never moves an element that is already
// stored: when an end runs out of directory room, only the directory is
// re-centred or reallocated. Chunks that fall out of use are kept as spares
// and handed back to the Allocator gradually, see Compact for the eager
// version.
//
// To create a Deque instance, you must use one of the available constructors,
// New, NewOrdered or CopySliceToDeque. The zero value is not usable, and nil
// Deques panic when called, except for Len.
//
// A Deque is not safe for concurrent use.
type Deque[T any] struct {
	dir    []handle
	chunks chunkArena[T]
	spare  []handle

	first     int // virtual index of element 0
	count     int
	peak      int // highest count since the last reclamation pass
	countdown int // removals left before the next reclamation pass

	shift  uint
	mask   int
	policy Policy
	alloc  Allocator[T]
	store  Storage[T]
	cmp    Comparer[T]
	log    *zap.Logger
}

/*****************************************************************************
 * CONSTRUCTORS
 *****************************************************************************/

// New returns an empty Deque. No memory is allocated until the first element
// is pushed.
func New[T any](opts ...Option[T]) *Deque[T] {
	d := &Deque[T]{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(d)
	}
	d.policy = ResolvedPolicy[T](d.policy)
	d.shift = uint(bits.TrailingZeros(uint(d.policy.ChunkCapacity)))
	d.mask = d.policy.ChunkCapacity - 1
	if d.alloc == nil {
		d.alloc = HeapAllocator[T]{}
	}
	if d.store == nil {
		d.store = ManagedStorage[T]{}
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	d.countdown = d.policy.ReclaimInterval
	return d
}

// NewOrdered returns an empty Deque that compares elements with < and ==.
func NewOrdered[T cmp.Ordered](opts ...Option[T]) *Deque[T] {
	return New(append([]Option[T]{WithComparer[T](Natural[T]{})}, opts...)...)
}

// CopySliceToDeque builds a Deque holding a copy of every element of s.
// Memory is not shared with s.
func CopySliceToDeque[T any](s []T, opts ...Option[T]) (*Deque[T], error) {
	d := New(opts...)
	if err := d.PushBack(s...); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}

// Clone returns a copy of the Deque with the same options. The copy gets its
// own chunks from the same Allocator.
func (d *Deque[T]) Clone() (*Deque[T], error) {
	c := &Deque[T]{
		shift:     d.shift,
		mask:      d.mask,
		policy:    d.policy,
		alloc:     d.alloc,
		store:     d.store,
		cmp:       d.cmp,
		log:       d.log,
		countdown: d.policy.ReclaimInterval,
	}
	if err := c.growBack(d.count); err != nil {
		c.Release()
		return nil, err
	}
	for i, s := range d.segments(0, d.count) {
		for j, t := range s {
			*c.slot(i+j) = t
		}
	}
	c.count = d.count
	c.peak = d.count
	return c, nil
}

/*****************************************************************************
 * DEQUE API
 *****************************************************************************/

// Len returns the number of elements in the Deque or 0 if nil.
func (d *Deque[T]) Len() int {
	if d == nil {
		return 0
	}
	return d.count
}

// IsEmpty returns whether the Deque is empty.
func (d *Deque[T]) IsEmpty() bool { return d.count == 0 }

// PushBack puts every argument at the back of the Deque. The last argument is
// the new back. Use PushBack and PopFront for FIFO ordering, or PushBack and
// PopBack for LIFO ordering.
//
// All chunks the arguments need are acquired before anything is written. If
// the Allocator fails, chunks already obtained for the call are handed back,
// the Deque is left unchanged (spare and allocated chunk counts included) and
// the error wraps ErrAllocation.
func (d *Deque[T]) PushBack(ts ...T) error {
	n := len(ts)
	if n == 0 {
		return nil
	}
	if err := d.growBack(n); err != nil {
		return err
	}
	for i, t := range ts {
		*d.slot(d.count+i) = t
	}
	d.count += n
	d.notePeak()
	return nil
}

// PushFront puts every argument at the front of the Deque. The last argument
// is the new front. It fails like PushBack.
func (d *Deque[T]) PushFront(ts ...T) error {
	n := len(ts)
	if n == 0 {
		return nil
	}
	if err := d.growFront(n); err != nil {
		return err
	}
	for i, t := range ts {
		*d.slot(-1 - i) = t
	}
	d.first -= n
	d.count += n
	d.notePeak()
	return nil
}

// PushBackDefault appends one default constructed element.
func (d *Deque[T]) PushBackDefault() error { return d.PushBack(d.store.Default()) }

// PushFrontDefault prepends one default constructed element.
func (d *Deque[T]) PushFrontDefault() error { return d.PushFront(d.store.Default()) }

// PeekBack returns the last element in the Deque. If the Deque is empty, it
// returns false.
func (d *Deque[T]) PeekBack() (t T, ok bool) {
	if d.count == 0 {
		return
	}
	return *d.slot(d.count - 1), true
}

// PeekFront returns the first element in the Deque. If the Deque is empty, it
// returns false.
func (d *Deque[T]) PeekFront() (t T, ok bool) {
	if d.count == 0 {
		return
	}
	return *d.slot(0), true
}

// PopBack removes the last element in the Deque and returns it. If it's empty,
// returns false. The element is handed over to the caller, so Storage
// finalizers do not run for it.
func (d *Deque[T]) PopBack() (t T, ok bool) {
	if d.count == 0 {
		return
	}
	p := d.slot(d.count - 1)
	t = *p
	d.store.Vacate(p)
	d.shrinkBack(1)
	return t, true
}

// PopFront removes the first element in the Deque and returns it. If it's
// empty, returns false.
func (d *Deque[T]) PopFront() (t T, ok bool) {
	if d.count == 0 {
		return
	}
	p := d.slot(0)
	t = *p
	d.store.Vacate(p)
	d.shrinkFront(1)
	return t, true
}

// DropFront destroys the n first elements of the Deque. If the Deque has
// fewer than n elements, it drops every element. If n is negative, no element
// is dropped.
func (d *Deque[T]) DropFront(n int) {
	n = min(max(n, 0), d.count)
	if n == 0 {
		return
	}
	for _, s := range d.segments(0, n) {
		for j := range s {
			d.store.Destroy(&s[j])
		}
	}
	d.shrinkFront(n)
}

// DropBack destroys the n last elements of the Deque. If the Deque has fewer
// than n elements, it drops every element. If n is negative, no element is
// dropped.
func (d *Deque[T]) DropBack(n int) {
	n = min(max(n, 0), d.count)
	if n == 0 {
		return
	}
	for _, s := range d.segments(d.count-n, d.count) {
		for j := range s {
			d.store.Destroy(&s[j])
		}
	}
	d.shrinkBack(n)
}

// Insert puts t at index i, shifting the elements on the shorter side by one.
// Valid positions are [0, Len()]; i == Len() is PushBack. It panics on any
// other index and fails like PushBack when a chunk cannot be allocated.
func (d *Deque[T]) Insert(i int, t T) error {
	if i < 0 || i > d.count {
		panic(fmt.Sprintf("deque: insert index %d out of bounds with length %d", i, d.count))
	}
	if i == d.count {
		return d.PushBack(t)
	}
	if i < d.count-i {
		if err := d.growFront(1); err != nil {
			return err
		}
		d.first--
		d.count++
		for j := 0; j < i; j++ {
			*d.slot(j) = *d.slot(j + 1)
		}
	} else {
		if err := d.growBack(1); err != nil {
			return err
		}
		d.count++
		for j := d.count - 1; j > i; j-- {
			*d.slot(j) = *d.slot(j - 1)
		}
	}
	*d.slot(i) = t
	d.notePeak()
	return nil
}

// RemoveAt destroys the element at index i and closes the gap by shifting the
// elements on the shorter side. Order is preserved. Panics if out of bounds.
func (d *Deque[T]) RemoveAt(i int) {
	d.checkBounds(i)
	d.store.Destroy(d.slot(i))
	if i < d.count-1-i {
		for j := i; j > 0; j-- {
			*d.slot(j) = *d.slot(j - 1)
		}
		d.store.Vacate(d.slot(0))
		d.shrinkFront(1)
		return
	}
	for j := i; j < d.count-1; j++ {
		*d.slot(j) = *d.slot(j + 1)
	}
	d.store.Vacate(d.slot(d.count - 1))
	d.shrinkBack(1)
}

// RemoveAtSwap destroys the element at index i and moves the last element
// into its place. It is O(1) but does not preserve order. Panics if out of
// bounds.
func (d *Deque[T]) RemoveAtSwap(i int) {
	d.checkBounds(i)
	last := d.count - 1
	d.store.Destroy(d.slot(i))
	if i != last {
		p := d.slot(last)
		*d.slot(i) = *p
		d.store.Vacate(p)
	}
	d.shrinkBack(1)
}

// Remove destroys the first element equal to t, keeping the order of the
// rest, and reports whether one was found. It panics with ErrNoComparer if
// the Deque has no Comparer.
func (d *Deque[T]) Remove(t T) bool {
	i, ok := d.IndexOf(t)
	if ok {
		d.RemoveAt(i)
	}
	return ok
}

// RemoveFunc destroys the first element satisfying f and reports whether one
// was found.
func (d *Deque[T]) RemoveFunc(f func(T) bool) bool {
	i, ok := d.IndexFunc(f)
	if ok {
		d.RemoveAt(i)
	}
	return ok
}

// Clear destroys every element. Chunks stay allocated for reuse.
func (d *Deque[T]) Clear() {
	for _, s := range d.segments(0, d.count) {
		for j := range s {
			d.store.Destroy(&s[j])
		}
	}
	lo, hi := d.attached()
	d.count = 0
	d.detach(lo, hi)
}

// SetCount grows the Deque with default constructed elements or shrinks it by
// destroying elements at the back. Shrinking counts towards reclamation like
// popping does.
func (d *Deque[T]) SetCount(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrNegativeCount, "set count %d", n)
	}
	if n < d.count {
		d.DropBack(d.count - n)
		return nil
	}
	if n == d.count {
		return nil
	}
	if err := d.growBack(n - d.count); err != nil {
		return err
	}
	for i := d.count; i < n; i++ {
		*d.slot(i) = d.store.Default()
	}
	d.count = n
	d.notePeak()
	return nil
}

// Reserve shapes the directory so that n more elements can be pushed at the
// back without moving directory entries. Chunks are still allocated lazily.
func (d *Deque[T]) Reserve(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrNegativeCount, "reserve %d", n)
	}
	if n == 0 {
		return nil
	}
	_, hi := d.attached()
	if end := (d.first+d.count+n-1)>>d.shift + 1; end > len(d.dir) {
		d.reshape(back, end-hi)
	}
	return nil
}

/*****************************************************************************
 * INDEX API
 *****************************************************************************/

// Cap returns how many elements fit from the current front without moving
// directory entries.
func (d *Deque[T]) Cap() int { return len(d.dir)<<d.shift - d.first }

// At indexes into the i-th position in the Deque. Panics if out of bounds.
func (d *Deque[T]) At(i int) T {
	d.checkBounds(i)
	return *d.slot(i)
}

// Set writes t to the i-th position in the Deque. Panics if out of bounds.
func (d *Deque[T]) Set(i int, t T) {
	d.checkBounds(i)
	*d.slot(i) = t
}

// Ptr returns the address of the i-th element. The address stays valid while
// the element is in the Deque and no Insert, RemoveAt or Sort moves it;
// pushing and popping at either end never does. Panics if out of bounds.
func (d *Deque[T]) Ptr(i int) *T {
	d.checkBounds(i)
	return d.slot(i)
}

// Swap swaps the elements in the i-th and j-th indexes. Panics if out of
// bounds.
func (d *Deque[T]) Swap(i, j int) {
	d.checkBounds(i)
	d.checkBounds(j)
	p, q := d.slot(i), d.slot(j)
	*p, *q = *q, *p
}

// MakeSliceCopy allocates a slice to hold every Deque element and copies them.
// Prefer passing a buffer to CopySlice for memory reuse.
func (d *Deque[T]) MakeSliceCopy() []T {
	s := make([]T, d.count)
	d.CopySlice(0, s)
	return s
}

// CopySlice has the same semantics as the copy() built-in function. It copies
// elements in the Deque starting at the start index up until the buffer is
// full or the Deque is over, whichever happens first, and returns the number
// of elements copied. Panics if start is outside [0, Len()].
func (d *Deque[T]) CopySlice(start int, buf []T) int {
	if start != d.count {
		d.checkBounds(start)
	}
	end := start + min(len(buf), d.count-start)
	for i, s := range d.segments(start, end) {
		copy(buf[i-start:], s)
	}
	return end - start
}

/*****************************************************************************
 * SEARCH API
 *****************************************************************************/

// Contains returns whether an element equal to t is in the Deque. It panics
// with ErrNoComparer if the Deque has no Comparer.
func (d *Deque[T]) Contains(t T) bool {
	_, ok := d.IndexOf(t)
	return ok
}

// ContainsFunc returns whether an element satisfying f is in the Deque.
func (d *Deque[T]) ContainsFunc(f func(T) bool) bool {
	_, ok := d.IndexFunc(f)
	return ok
}

// IndexOf returns the index of the first element equal to t.
func (d *Deque[T]) IndexOf(t T) (int, bool) {
	return d.IndexOfFrom(t, 0)
}

// IndexOfFrom returns the index of the first element equal to t at or after
// start.
func (d *Deque[T]) IndexOfFrom(t T, start int) (int, bool) {
	c := d.comparer()
	return d.indexFunc(start, func(u T) bool { return c.Equal(u, t) })
}

// IndexFunc returns the index of the first element that satisfies f.
func (d *Deque[T]) IndexFunc(f func(T) bool) (int, bool) {
	return d.indexFunc(0, f)
}

func (d *Deque[T]) indexFunc(start int, f func(T) bool) (int, bool) {
	for i, s := range d.segments(max(start, 0), d.count) {
		for j, t := range s {
			if f(t) {
				return i + j, true
			}
		}
	}
	return 0, false
}

// LastIndexOf returns the index of the last element equal to t.
func (d *Deque[T]) LastIndexOf(t T) (int, bool) {
	return d.LastIndexOfBefore(t, d.count)
}

// LastIndexOfBefore returns the index of the last element equal to t among
// the indexes smaller than start.
func (d *Deque[T]) LastIndexOfBefore(t T, start int) (int, bool) {
	c := d.comparer()
	for i := min(start, d.count) - 1; i >= 0; i-- {
		if c.Equal(*d.slot(i), t) {
			return i, true
		}
	}
	return 0, false
}

/*****************************************************************************
 * COMPARISON API
 *****************************************************************************/

// Equal returns whether other has the same length and the same elements in
// the same order, according to the Deque's Comparer. Two nil Deques are
// equal, but an empty Deque and nil are not.
func (d *Deque[T]) Equal(other *Deque[T]) bool {
	if d == nil || other == nil {
		return d == other
	}
	c := d.comparer()
	return d.EqualFunc(other, c.Equal)
}

// EqualFunc returns whether both Deques have the same length and the same
// elements in the same order. Two nil Deques are equal, but an empty Deque and
// nil are not.
func (d *Deque[T]) EqualFunc(other *Deque[T], eq func(T, T) bool) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.count != other.count {
		return false
	}
	for i, s := range d.segments(0, d.count) {
		for j, t := range s {
			if !eq(t, *other.slot(i+j)) {
				return false
			}
		}
	}
	return true
}

// Equal returns whether both Deques have the same length and the same elements
// in the same order. Two nil Deques are equal, but an empty Deque and nil are
// not. This must not be a method, otherwise Deque would be constrained to
// comparable elements.
func Equal[T comparable](d1, d2 *Deque[T]) bool {
	return d1.EqualFunc(d2, func(a, b T) bool { return a == b })
}

// Max returns the maximum element in the Deque. It panics on an empty Deque.
func Max[T cmp.Ordered](d *Deque[T]) T {
	result := d.At(0)
	for _, s := range d.segments(0, d.count) {
		for _, t := range s {
			result = max(result, t)
		}
	}
	return result
}

// Min returns the minimum element in the Deque. It panics on an empty Deque.
func Min[T cmp.Ordered](d *Deque[T]) T {
	result := d.At(0)
	for _, s := range d.segments(0, d.count) {
		for _, t := range s {
			result = min(result, t)
		}
	}
	return result
}

/*****************************************************************************
 * SORT API
 *****************************************************************************/

// Sort sorts the Deque in place with its Comparer. The sort is not stable.
func (d *Deque[T]) Sort() {
	d.SortWith(d.comparer())
}

// SortWith sorts the Deque in place with c. The sort is not stable.
func (d *Deque[T]) SortWith(c Comparer[T]) {
	d.SortFunc(c.Less)
}

// SortFunc sorts the Deque in place with less. The sort is not stable.
func (d *Deque[T]) SortFunc(less func(a, b T) bool) {
	sort.Sort(sorter[T]{d: d, less: less})
}

// sorter sorts the chunks in place, without a flat copy.
type sorter[T any] struct {
	d    *Deque[T]
	less func(a, b T) bool
}

func (s sorter[T]) Len() int           { return s.d.count }
func (s sorter[T]) Less(i, j int) bool { return s.less(*s.d.slot(i), *s.d.slot(j)) }
func (s sorter[T]) Swap(i, j int) {
	p, q := s.d.slot(i), s.d.slot(j)
	*p, *q = *q, *p
}

/*****************************************************************************
 * ITER API
 *****************************************************************************/

// ForEach takes in a function that returns a bool and calls it in order for
// every element in the queue, or until the first call that returns false.
func (d *Deque[T]) ForEach(f func(T) bool) {
	for t := range d.Iter() {
		if !f(t) {
			return
		}
	}
}

// Iter returns an iterator over values only in order. If you need indexes,
// use All instead. The Deque must not be modified during iteration.
func (d *Deque[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		if d == nil {
			return
		}
		for _, s := range d.segments(0, d.count) {
			for _, t := range s {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// All returns an iterator over index-value pairs in order. It has the same
// semantics as slices.All.
func (d *Deque[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if d == nil {
			return
		}
		for i, s := range d.segments(0, d.count) {
			for j, t := range s {
				if !yield(i+j, t) {
					return
				}
			}
		}
	}
}

// Backward returns an iterator over index-value pairs from the back to the
// front. It has the same semantics as slices.Backward.
func (d *Deque[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if d == nil {
			return
		}
		for i := d.count - 1; i >= 0; i-- {
			if !yield(i, *d.slot(i)) {
				return
			}
		}
	}
}

/*****************************************************************************
 * SENTINEL ERRORS
 *****************************************************************************/

// ErrAllocation is wrapped by every error caused by the Allocator failing to
// provide a chunk. The Deque is left as it was before the failing call.
var ErrAllocation = errors.New("chunk allocation failed")

// ErrNegativeCount is returned when asking for a negative number of elements.
var ErrNegativeCount = errors.New("count cannot be negative")

// ErrNoComparer is the panic value of operations that need a Comparer on a
// Deque built without one.
var ErrNoComparer = errors.New("deque has no comparer")

// ErrInvalidPolicy is wrapped by Policy validation errors.
var ErrInvalidPolicy = errors.New("invalid policy")

// ErrUnknownFormat is returned when decoding a format other than toml or
// yaml.
var ErrUnknownFormat = errors.New("unknown config format")

/*****************************************************************************
 * HELPERS
 *****************************************************************************/

func ceilPow2(x uint) uint {
	// For our purposes, 0 is invalid.
	if x == 0 {
		return 1
	}
	const arch = bits.UintSize
	msb := arch - 1 - bits.LeadingZeros(x)
	var result uint = 1 << msb
	if result < x {
		result <<= 1
	}
	return result
}

func (d *Deque[T]) checkBounds(i int) {
	if i < 0 || i >= d.Len() {
		panic(fmt.Sprintf("deque: index %d out of bounds with length %d", i, d.Len()))
	}
}

func (d *Deque[T]) chunkCap() int { return d.mask + 1 }

// slot returns the address of logical index i. Indexes outside [0, count)
// are fine as long as their chunk is attached.
func (d *Deque[T]) slot(i int) *T {
	v := d.first + i
	return &d.chunks.get(d.dir[v>>d.shift])[v&d.mask]
}

// segments yields the contiguous runs of [start, end) along with the logical
// index of their first element.
func (d *Deque[T]) segments(start, end int) iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		for i := start; i < end; {
			v := d.first + i
			off := v & d.mask
			buf := d.chunks.get(d.dir[v>>d.shift])
			n := min(len(buf)-off, end-i)
			if !yield(i, buf[off:off+n]) {
				return
			}
			i += n
		}
	}
}

func (d *Deque[T]) comparer() Comparer[T] {
	if d.cmp == nil {
		panic(ErrNoComparer)
	}
	return d.cmp
}

func (d *Deque[T]) notePeak() { d.peak = max(d.peak, d.count) }

// shrinkFront forgets the n first elements, whose slots are already vacated
// or destroyed.
func (d *Deque[T]) shrinkFront(n int) {
	lo, hi := d.attached()
	d.first += n
	d.count -= n
	d.detach(lo, hi)
	d.reduce(n)
}

// shrinkBack forgets the n last elements, whose slots are already vacated or
// destroyed.
func (d *Deque[T]) shrinkBack(n int) {
	lo, hi := d.attached()
	d.count -= n
	d.detach(lo, hi)
	d.reduce(n)
}
