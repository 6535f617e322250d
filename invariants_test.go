package deque

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// validate checks the bookkeeping of d. Any error is a bug in the Deque.
func (d *Deque[T]) validate() error {
	if d.count < 0 || d.count > len(d.dir)<<d.shift-d.first {
		return fmt.Errorf("count %d does not fit directory %d from %d", d.count, len(d.dir), d.first)
	}
	if d.first < 0 {
		return fmt.Errorf("first %d is negative", d.first)
	}
	lo, hi := d.attached()
	for i, h := range d.dir {
		inside := i >= lo && i < hi
		if inside && h == noChunk {
			return fmt.Errorf("entry %d inside span [%d,%d) is absent", i, lo, hi)
		}
		if !inside && h != noChunk {
			return fmt.Errorf("entry %d outside span [%d,%d) holds chunk %d", i, lo, hi, h)
		}
	}
	if got, want := d.chunks.live, hi-lo+len(d.spare); got != want {
		return fmt.Errorf("allocated %d, want active %d + spare %d", got, hi-lo, len(d.spare))
	}
	seen := map[handle]bool{}
	for _, h := range append(append([]handle{}, d.dir[lo:hi]...), d.spare...) {
		if h == noChunk || seen[h] {
			return fmt.Errorf("handle %d listed twice or absent", h)
		}
		seen[h] = true
		if len(d.chunks.get(h)) != d.chunkCap() {
			return fmt.Errorf("chunk %d has %d slots", h, len(d.chunks.get(h)))
		}
	}
	if d.count == 0 && d.first&d.mask != 0 {
		return fmt.Errorf("empty deque starts inside a chunk: first %d", d.first)
	}
	if d.peak < d.count {
		return fmt.Errorf("peak %d below count %d", d.peak, d.count)
	}
	return nil
}

func requireValid[T any](t *testing.T, d *Deque[T]) {
	t.Helper()
	require.NoError(t, d.validate())
}
