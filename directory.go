package deque

import "go.uber.org/zap"

// side is the end of the directory that needs room.
type side int

const (
	front side = iota
	back
)

func (s side) String() string {
	if s == front {
		return "front"
	}
	return "back"
}

// dirPlan is the shape of the directory after making room: its length and the
// index the first used entry moves to.
type dirPlan struct {
	length int
	first  int
}

// planDirectory decides how to get need free entries on side s of a
// directory of length entries whose used entries occupy
// [slackFront, length-slackBack). It never looks at elements.
//
// If s already has the room the directory is left alone. If the free entries
// on both sides cover need plus half of the used entries, the used block is
// re-centred in place. Otherwise the directory grows to at least twice its
// length. In both reshaping cases the free entries beyond need are split
// evenly, so the side that just ran out gets a share proportional to the
// directory and the next reshape is far away.
func planDirectory(length, used, slackFront, slackBack, need int, s side, minLength int) dirPlan {
	if (s == front && slackFront >= need) || (s == back && slackBack >= need) {
		return dirPlan{length: length, first: slackFront}
	}
	newLength := length
	if free := slackFront + slackBack; free < need+(used+1)/2 {
		newLength = max(2*length, used+2*need, minLength)
	}
	spare := newLength - used - need
	if s == back {
		return dirPlan{length: newLength, first: spare / 2}
	}
	return dirPlan{length: newLength, first: need + spare - spare/2}
}

// attached returns the range of directory entries holding the active span.
// It is empty when the Deque is empty.
func (d *Deque[T]) attached() (lo, hi int) {
	lo = d.first >> d.shift
	if d.count == 0 {
		return lo, lo
	}
	return lo, (d.first+d.count-1)>>d.shift + 1
}

// reshape makes room for need more attached entries on side s.
func (d *Deque[T]) reshape(s side, need int) {
	lo, hi := d.attached()
	used := hi - lo
	p := planDirectory(len(d.dir), used, lo, len(d.dir)-hi, need, s, d.policy.MinDirectory)
	if p.length == len(d.dir) && p.first == lo {
		return
	}
	delta := p.first - lo
	if p.length != len(d.dir) {
		dir := make([]handle, p.length)
		copy(dir[p.first:], d.dir[lo:hi])
		d.dir = dir
		d.log.Debug("deque: directory resized",
			zap.Stringer("side", s),
			zap.Int("length", p.length),
			zap.Int("used", used))
	} else {
		copy(d.dir[p.first:p.first+used], d.dir[lo:hi])
		if delta > 0 {
			clear(d.dir[lo:min(hi, p.first)])
		} else {
			clear(d.dir[max(lo, p.first+used):hi])
		}
		d.log.Debug("deque: directory recentred",
			zap.Stringer("side", s),
			zap.Int("shift", delta),
			zap.Int("used", used))
	}
	d.first += delta << d.shift
}

// growBack attaches the chunks needed for n more elements after the last
// one. Chunks are acquired before the directory is touched, so a failed
// allocation leaves the Deque as it was.
func (d *Deque[T]) growBack(n int) error {
	_, hi := d.attached()
	need := (d.first+d.count+n-1)>>d.shift + 1 - hi
	hs, err := d.takeChunks(need)
	if err != nil {
		return err
	}
	if hi+need > len(d.dir) {
		d.reshape(back, need)
		_, hi = d.attached()
	}
	copy(d.dir[hi:], hs)
	return nil
}

// growFront attaches the chunks needed for n more elements before the first
// one. The caller moves first once the slots are written.
func (d *Deque[T]) growFront(n int) error {
	lo, _ := d.attached()
	need := lo - (d.first-n)>>d.shift
	hs, err := d.takeChunks(need)
	if err != nil {
		return err
	}
	if need > lo {
		d.reshape(front, need)
		lo, _ = d.attached()
	}
	copy(d.dir[lo-need:], hs)
	return nil
}

// detach parks every chunk of [lo, hi) that is no longer part of the active
// span in the spare list. An empty Deque is re-centred on a chunk boundary so
// both ends have the same room.
func (d *Deque[T]) detach(lo, hi int) {
	nlo, nhi := d.attached()
	for i := lo; i < min(nlo, hi); i++ {
		d.park(i)
	}
	for i := max(nhi, lo); i < hi; i++ {
		d.park(i)
	}
	if d.count == 0 {
		d.first = len(d.dir) / 2 << d.shift
	}
}

func (d *Deque[T]) park(i int) {
	d.spare = append(d.spare, d.dir[i])
	d.dir[i] = noChunk
}
