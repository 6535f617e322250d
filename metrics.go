package deque

// ChunkCapacity returns the number of elements per chunk.
func (d *Deque[T]) ChunkCapacity() int { return d.chunkCap() }

// AllocatedChunks returns the number of chunks currently obtained from the
// Allocator, in use or spare.
func (d *Deque[T]) AllocatedChunks() int { return d.chunks.live }

// SpareChunks returns the number of allocated chunks that hold no element.
func (d *Deque[T]) SpareChunks() int { return len(d.spare) }

// DirectoryLen returns the number of entries of the chunk directory.
func (d *Deque[T]) DirectoryLen() int { return len(d.dir) }

// Policy returns the resolved policy the Deque runs with.
func (d *Deque[T]) Policy() Policy { return d.policy }

// Allocator returns the Allocator the Deque gets its chunks from.
func (d *Deque[T]) Allocator() Allocator[T] { return d.alloc }

// Utilization returns the ratio of elements to allocated slots (0.0 to 1.0).
// Returns 0.0 if no chunk is allocated.
func (d *Deque[T]) Utilization() float64 {
	capacity := d.chunks.live * d.chunkCap()
	if capacity == 0 {
		return 0
	}
	return float64(d.count) / float64(capacity)
}

// Stats returns a snapshot of Deque statistics.
func (d *Deque[T]) Stats() Stats {
	lo, hi := d.attached()
	return Stats{
		Len:             d.count,
		ChunkCapacity:   d.chunkCap(),
		DirectoryLen:    len(d.dir),
		ActiveChunks:    hi - lo,
		SpareChunks:     len(d.spare),
		AllocatedChunks: d.chunks.live,
		HighWaterMark:   d.peak,
		Utilization:     d.Utilization(),
	}
}

// Stats contains statistical information about a Deque.
type Stats struct {
	Len             int     // Elements stored
	ChunkCapacity   int     // Elements per chunk
	DirectoryLen    int     // Directory entries, attached or not
	ActiveChunks    int     // Chunks holding at least one element
	SpareChunks     int     // Allocated chunks holding no element
	AllocatedChunks int     // ActiveChunks + SpareChunks
	HighWaterMark   int     // Peak Len since the last reclamation pass
	Utilization     float64 // Ratio of Len to allocated slots (0.0-1.0)
}
