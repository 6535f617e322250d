package workload

import (
	"context"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lucasgdosr/deque/v2"
)

var (
	// ErrMismatch means the deque and the reference slice disagree.
	ErrMismatch = errors.New("deque diverged from reference")
	// ErrLeak means chunks were still allocated after Release.
	ErrLeak = errors.New("chunks leaked")
)

// Report describes the deque after one step.
type Report struct {
	Step          int
	Op            string
	Stats         deque.Stats
	Allocator     deque.AllocatorMetrics
	AllocFailures int // operations of the step refused by the allocator
	Elapsed       time.Duration
}

// runner replays a scenario against a deque and a plain slice holding the
// same elements.
type runner struct {
	d     *deque.Deque[int64]
	alloc *deque.TrackingAllocator[int64]
	ref   reference
	next  int64
	fails int
}

// Run replays sc and returns one Report per step plus a final "release"
// report. It stops at the first divergence from the reference slice or when
// ctx is done. Allocation failures are counted, not fatal: the deque must be
// unchanged by them.
func Run(ctx context.Context, sc Scenario, log *zap.Logger) ([]Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("scenario", sc.Name))
	alloc := deque.NewTrackingAllocator[int64](nil, sc.Budget)
	r := &runner{
		alloc: alloc,
		d: deque.NewOrdered(
			deque.WithPolicy[int64](sc.Policy),
			deque.WithAllocator[int64](alloc),
			deque.WithLogger[int64](log.Named("deque")),
		),
	}
	pol := r.d.Policy()
	log.Info("scenario started",
		zap.Int("steps", len(sc.Steps)),
		zap.Int("chunk_capacity", pol.ChunkCapacity),
		zap.Int("reclaim_interval", pol.ReclaimInterval))

	reports := make([]Report, 0, len(sc.Steps)+1)
	for i, st := range sc.Steps {
		start := time.Now()
		r.fails = 0
		for range max(st.Repeat, 1) {
			if err := ctx.Err(); err != nil {
				return reports, errors.Wrapf(err, "step %d", i)
			}
			if err := r.apply(st); err != nil {
				return reports, errors.Wrapf(err, "step %d (%s)", i, st.Op)
			}
		}
		if err := r.check(); err != nil {
			return reports, errors.Wrapf(err, "step %d (%s)", i, st.Op)
		}
		rep := r.report(i, st.Op, time.Since(start))
		reports = append(reports, rep)
		log.Debug("step done",
			zap.Int("step", i),
			zap.String("op", st.Op),
			zap.Int("len", rep.Stats.Len),
			zap.Int("chunks", rep.Stats.AllocatedChunks),
			zap.Int("spare", rep.Stats.SpareChunks),
			zap.Int("directory", rep.Stats.DirectoryLen),
			zap.Int("alloc_failures", rep.AllocFailures))
	}

	start := time.Now()
	r.d.Release()
	r.ref.clear()
	rep := r.report(len(sc.Steps), "release", time.Since(start))
	reports = append(reports, rep)
	if rep.Allocator.Live != 0 {
		return reports, errors.Wrapf(ErrLeak, "%d chunks live", rep.Allocator.Live)
	}
	log.Info("scenario finished",
		zap.Int("allocs", rep.Allocator.Allocs),
		zap.Int("peak_chunks", rep.Allocator.PeakLive),
		zap.Int("alloc_failures", rep.Allocator.Failures))
	return reports, nil
}

func (r *runner) report(step int, op string, elapsed time.Duration) Report {
	return Report{
		Step:          step,
		Op:            op,
		Stats:         r.d.Stats(),
		Allocator:     r.alloc.Metrics(),
		AllocFailures: r.fails,
		Elapsed:       elapsed,
	}
}

// try runs update unless err is an allocation failure, which is only
// counted since the deque is left as it was. Other errors are returned.
func (r *runner) try(err error, update func()) error {
	switch {
	case err == nil:
		update()
		return nil
	case errors.Is(err, deque.ErrAllocation):
		r.fails++
		return nil
	}
	return err
}

func (r *runner) value() int64 {
	r.next++
	return r.next
}

func (r *runner) apply(st Step) error {
	switch st.Op {
	case OpPushBack:
		for range st.Count {
			v := r.value()
			if err := r.try(r.d.PushBack(v), func() { r.ref.pushBack(v) }); err != nil {
				return err
			}
		}
	case OpPushFront:
		for range st.Count {
			v := r.value()
			if err := r.try(r.d.PushFront(v), func() { r.ref.pushFront(v) }); err != nil {
				return err
			}
		}
	case OpPopBack:
		for range min(st.Count, r.ref.len()) {
			v, _ := r.d.PopBack()
			if want := r.ref.popBack(); v != want {
				return errors.Wrapf(ErrMismatch, "popped %d from the back, want %d", v, want)
			}
		}
	case OpPopFront:
		for range min(st.Count, r.ref.len()) {
			if err := r.popFront(); err != nil {
				return err
			}
		}
	case OpChurn:
		for range st.Count {
			v := r.value()
			if err := r.try(r.d.PushBack(v), func() { r.ref.pushBack(v) }); err != nil {
				return err
			}
			if err := r.popFront(); err != nil {
				return err
			}
		}
	case OpInsert:
		for range st.Count {
			i, v := r.ref.len()/2, r.value()
			if err := r.try(r.d.Insert(i, v), func() { r.ref.insert(i, v) }); err != nil {
				return err
			}
		}
	case OpRemove:
		for range min(st.Count, r.ref.len()) {
			i := r.ref.len() / 2
			r.d.RemoveAt(i)
			r.ref.remove(i)
		}
	case OpSetCount:
		return r.try(r.d.SetCount(st.Count), func() { r.ref.resize(st.Count) })
	case OpReserve:
		return r.d.Reserve(st.Count)
	case OpClear:
		r.d.Clear()
		r.ref.clear()
	case OpCompact:
		r.d.Compact()
	case OpSort:
		r.d.Sort()
		slices.Sort(r.ref.items())
	}
	return nil
}

func (r *runner) popFront() error {
	if r.ref.len() == 0 {
		return nil
	}
	v, _ := r.d.PopFront()
	if want := r.ref.popFront(); v != want {
		return errors.Wrapf(ErrMismatch, "popped %d from the front, want %d", v, want)
	}
	return nil
}

// check compares the whole deque with the reference slice.
func (r *runner) check() error {
	want := r.ref.items()
	if r.d.Len() != len(want) {
		return errors.Wrapf(ErrMismatch, "len %d, want %d", r.d.Len(), len(want))
	}
	for i, v := range r.d.All() {
		if v != want[i] {
			return errors.Wrapf(ErrMismatch, "index %d holds %d, want %d", i, v, want[i])
		}
	}
	return nil
}
