package deque

import "go.uber.org/zap"

// reduce counts n removed elements towards the next reclamation pass.
func (d *Deque[T]) reduce(n int) {
	d.countdown -= n
	if d.countdown > 0 {
		return
	}
	d.countdown = d.policy.ReclaimInterval
	d.reclaim()
}

// reclaim frees spare chunks that are not needed to hold as many elements as
// the Deque held at its peak since the previous pass, plus ReclaimSlack. The
// peak then restarts from the current length, so after a spike each pass
// frees a little more until only what the current load needs remains.
func (d *Deque[T]) reclaim() {
	keep := d.requiredChunks(max(d.count, d.peak)) + d.policy.ReclaimSlack
	freed := d.freeSpares(keep)
	d.peak = d.count
	if freed > 0 {
		d.log.Debug("deque: reclaimed chunks",
			zap.Int("freed", freed),
			zap.Int("allocated", d.chunks.live),
			zap.Int("keep", keep),
			zap.Int("len", d.count))
	}
}

// requiredChunks returns how many chunks n elements span when they start at
// the current front.
func (d *Deque[T]) requiredChunks(n int) int {
	if n <= 0 {
		return 0
	}
	return (d.first&d.mask+n-1)>>d.shift + 1
}

// Compact frees every spare chunk and shrinks the directory to the chunks in
// use plus CompactSlack entries on each side. An empty Deque gives back all
// of its memory. Compact is never called internally.
func (d *Deque[T]) Compact() {
	freed := d.freeSpares(0)
	d.peak = d.count
	d.countdown = d.policy.ReclaimInterval
	if d.count == 0 {
		d.dir = nil
		d.chunks.reset()
		d.first = 0
		d.log.Debug("deque: compacted", zap.Int("freed", freed), zap.Int("len", 0))
		return
	}
	lo, hi := d.attached()
	used := hi - lo
	slack := d.policy.CompactSlack
	if length := used + 2*slack; length < len(d.dir) {
		dir := make([]handle, length)
		copy(dir[slack:], d.dir[lo:hi])
		d.dir = dir
		d.first += (slack - lo) << d.shift
	}
	d.log.Debug("deque: compacted",
		zap.Int("freed", freed),
		zap.Int("directory", len(d.dir)),
		zap.Int("len", d.count))
}

// Release destroys every element and returns every chunk to the Allocator.
// The Deque is left empty and usable, as if just built.
func (d *Deque[T]) Release() {
	d.Clear()
	freed := d.freeSpares(0)
	d.dir = nil
	d.spare = nil
	d.chunks.reset()
	d.first = 0
	d.peak = 0
	d.countdown = d.policy.ReclaimInterval
	d.log.Debug("deque: released", zap.Int("freed", freed))
}
