package workload

import "slices"

// reference is the plain slice the deque is checked against. Free room is
// kept in front of the items so pushing at either end stays cheap.
type reference struct {
	buf  []int64
	head int
}

func (f *reference) items() []int64 { return f.buf[f.head:] }

func (f *reference) len() int { return len(f.buf) - f.head }

func (f *reference) pushBack(v int64) {
	if len(f.buf) == cap(f.buf) && f.head > f.len() {
		n := copy(f.buf, f.items())
		f.buf = f.buf[:n]
		f.head = 0
	}
	f.buf = append(f.buf, v)
}

func (f *reference) pushFront(v int64) {
	if f.head == 0 {
		n := f.len()
		room := n + 8
		buf := make([]int64, room+n, room+2*n+8)
		copy(buf[room:], f.buf)
		f.buf, f.head = buf, room
	}
	f.head--
	f.buf[f.head] = v
}

func (f *reference) popBack() int64 {
	v := f.buf[len(f.buf)-1]
	f.buf = f.buf[:len(f.buf)-1]
	return v
}

func (f *reference) popFront() int64 {
	v := f.buf[f.head]
	f.head++
	return v
}

func (f *reference) insert(i int, v int64) { f.buf = slices.Insert(f.buf, f.head+i, v) }

func (f *reference) remove(i int) { f.buf = slices.Delete(f.buf, f.head+i, f.head+i+1) }

// resize truncates or pads with zero values.
func (f *reference) resize(n int) {
	if n <= f.len() {
		f.buf = f.buf[:f.head+n]
		return
	}
	f.buf = append(f.buf, make([]int64, n-f.len())...)
}

func (f *reference) clear() {
	f.buf = f.buf[:0]
	f.head = 0
}
