package deque

import "github.com/pkg/errors"

// handle names a chunk owned by a chunkArena. The zero handle means "no
// chunk" so a freshly made directory is entirely absent.
type handle uint32

const noChunk handle = 0

// chunkArena owns the chunk buffers of one Deque. Directory entries and the
// spare list refer to chunks by handle only, so every buffer has exactly one
// owner and goes back to the allocator exactly once.
type chunkArena[T any] struct {
	bufs [][]T    // buffer of handle h lives at bufs[h-1]
	free []handle // handles whose buffer was returned
	live int
}

// adopt takes ownership of buf and returns its handle.
func (a *chunkArena[T]) adopt(buf []T) handle {
	a.live++
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.bufs[h-1] = buf
		return h
	}
	a.bufs = append(a.bufs, buf)
	return handle(len(a.bufs))
}

// drop gives up ownership of h and returns its buffer.
func (a *chunkArena[T]) drop(h handle) []T {
	buf := a.bufs[h-1]
	a.bufs[h-1] = nil
	a.free = append(a.free, h)
	a.live--
	return buf
}

// get returns the buffer of h.
func (a *chunkArena[T]) get(h handle) []T {
	return a.bufs[h-1]
}

// reset forgets every handle. The caller has already dropped them.
func (a *chunkArena[T]) reset() {
	a.bufs = nil
	a.free = nil
	a.live = 0
}

/*****************************************************************************
 * CHUNK ACQUISITION
 *****************************************************************************/

// takeChunk returns a spare chunk, or a new one from the allocator.
func (d *Deque[T]) takeChunk() (handle, error) {
	if n := len(d.spare); n > 0 {
		h := d.spare[n-1]
		d.spare = d.spare[:n-1]
		return h, nil
	}
	buf, err := d.alloc.Allocate(d.chunkCap())
	if err != nil {
		return noChunk, errors.Wrap(err, "deque: allocate chunk")
	}
	if len(buf) < d.chunkCap() {
		d.alloc.Deallocate(buf)
		return noChunk, errors.Wrapf(ErrAllocation, "deque: chunk of %d elements, need %d", len(buf), d.chunkCap())
	}
	return d.chunks.adopt(buf[:d.chunkCap()]), nil
}

// takeChunks acquires n chunks up front. On failure every chunk taken is
// given back: spares return to the spare list in their old order and fresh
// chunks return to the allocator, so the Deque is exactly as before.
func (d *Deque[T]) takeChunks(n int) ([]handle, error) {
	if n == 0 {
		return nil, nil
	}
	spares := len(d.spare)
	hs := make([]handle, 0, n)
	for range n {
		h, err := d.takeChunk()
		if err != nil {
			d.untake(hs, spares)
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, nil
}

// untake undoes a partial takeChunks. The first min(spares, len(hs))
// handles came off the spare list, the rest from the allocator.
func (d *Deque[T]) untake(hs []handle, spares int) {
	reused := min(spares, len(hs))
	for i := reused - 1; i >= 0; i-- {
		d.spare = append(d.spare, hs[i])
	}
	for _, h := range hs[reused:] {
		d.freeChunk(h)
	}
}

// freeChunk returns the chunk behind h to the allocator.
func (d *Deque[T]) freeChunk(h handle) {
	d.alloc.Deallocate(d.chunks.drop(h))
}

// freeSpares returns spare chunks to the allocator until at most keep chunks
// are allocated in total, and reports how many were freed.
func (d *Deque[T]) freeSpares(keep int) int {
	freed := 0
	for d.chunks.live > keep && len(d.spare) > 0 {
		n := len(d.spare) - 1
		d.freeChunk(d.spare[n])
		d.spare[n] = noChunk
		d.spare = d.spare[:n]
		freed++
	}
	return freed
}
