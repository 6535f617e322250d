package deque

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRunsOncePerDestroyedElement(t *testing.T) {
	finalized := map[int]int{}
	store := ManagedStorage[int]{
		New:      func() int { return 1000 },
		Finalize: func(v int) { finalized[v]++ },
	}
	d := NewOrdered(
		WithStorage[int](store),
		WithPolicy[int](Policy{ChunkCapacity: 4, ReclaimInterval: 4, MinDirectory: 4}),
	)
	for i := range 20 {
		require.NoError(t, d.PushBack(i))
	}

	v, _ := d.PopFront()
	assert.Equal(t, 0, v)
	v, _ = d.PopBack()
	assert.Equal(t, 19, v)
	assert.Empty(t, finalized, "popped values belong to the caller")

	require.NoError(t, d.Insert(5, 100))
	require.NoError(t, d.Insert(15, 101))
	assert.Empty(t, finalized, "moving elements must not finalize them")

	d.RemoveAt(3)     // 4
	d.RemoveAtSwap(0) // 1
	assert.True(t, d.Remove(10))
	d.DropFront(2)
	d.DropBack(2)
	require.NoError(t, d.SetCount(d.Len()-1))
	require.NoError(t, d.SetCount(d.Len()+2))
	requireValid(t, d)
	d.Clear()
	d.Release()

	want := map[int]int{100: 1, 101: 1, 1000: 2}
	for i := 1; i < 19; i++ {
		want[i] = 1
	}
	assert.Equal(t, want, finalized)
}

func TestManagedStorageZeroesVacatedSlots(t *testing.T) {
	a, b, c := 1, 2, 3
	d := New[*int](WithPolicy[*int](Policy{ChunkCapacity: 4, MinDirectory: 4}))
	require.NoError(t, d.PushBack(&a, &b, &c))

	last := d.Ptr(2)
	_, _ = d.PopBack()
	assert.Nil(t, *last)

	first := d.Ptr(0)
	d.DropFront(1)
	assert.Nil(t, *first)

	require.NoError(t, d.PushBack(&c, &a))
	tail := d.Ptr(2)
	d.RemoveAt(1)
	assert.Nil(t, *tail, "the slot the last element moved out of is cleared")
	assert.Equal(t, []*int{&b, &a}, d.MakeSliceCopy())
}

func TestTrivialStorageLeavesSlots(t *testing.T) {
	a, b := 1, 2
	d := New[*int](
		WithStorage[*int](TrivialStorage[*int]{}),
		WithPolicy[*int](Policy{ChunkCapacity: 4, MinDirectory: 4}),
	)
	require.NoError(t, d.PushBack(&a, &b))

	last := d.Ptr(1)
	v, ok := d.PopBack()
	require.True(t, ok)
	assert.Same(t, &b, v)
	assert.Same(t, &b, *last)

	require.NoError(t, d.PushBackDefault())
	assert.Nil(t, d.At(1))
}

func TestManagedStorageDefault(t *testing.T) {
	d := New(WithStorage[string](ManagedStorage[string]{New: func() string { return "x" }}))
	require.NoError(t, d.PushBackDefault())
	require.NoError(t, d.PushFrontDefault())
	require.NoError(t, d.SetCount(3))
	assert.Equal(t, []string{"x", "x", "x"}, d.MakeSliceCopy())
}
