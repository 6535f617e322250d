// Package deque implements a chunked double-ended queue for Go.
//
// # Overview
//
// A Deque stores its elements in fixed-size chunks and keeps a directory of
// chunk handles with free entries at both ends. This gives:
//
//   - O(1) amortized PushBack, PushFront, PopBack and PopFront
//   - O(1) random access through At, Set and Ptr
//   - Stable element addresses: pushing or popping never moves other elements
//   - Bounded memory after load spikes, without allocation thrashing
//
// # Basic Usage
//
//	d := deque.NewOrdered[int]()
//	_ = d.PushBack(1, 2, 3)
//	_ = d.PushFront(0)
//	v, _ := d.PopBack() // 3
//	d.Sort()
//
// # Memory
//
// Chunks are obtained lazily from an Allocator (HeapAllocator by default).
// Chunks emptied by popping are kept as spares and reused. Every
// Policy.ReclaimInterval removed elements a reclamation pass gives back the
// spares that exceed what the peak length since the previous pass needs, so
// a Deque that spiked and then drained returns its memory over a few passes.
// Compact gives memory back immediately and Release gives all of it back.
//
// Only the Allocator can fail. Operations that may allocate return an error
// wrapping ErrAllocation and leave the Deque as it was.
//
// # Element Lifetime
//
// ManagedStorage (the default) zeroes every slot the Deque gives up so the
// garbage collector can free what it referenced, and can run a finalizer for
// elements destroyed inside the Deque. TrivialStorage skips that work for
// element types without references.
//
// # Thread Safety
//
// A Deque is not safe for concurrent use. Allocators can be shared between
// deques owned by different goroutines through SafeAllocator.
//
// # Metrics and Monitoring
//
//	s := d.Stats()
//	fmt.Printf("Chunks: %d allocated, %d spare\n", s.AllocatedChunks, s.SpareChunks)
//	fmt.Printf("Utilization: %.2f%%\n", s.Utilization*100)
package deque
