package stack

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attached(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.Attach())
	return s
}

func TestStore_AttachAllocatesDefaultCapacity(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Capacity())

	require.NoError(t, s.Attach())
	assert.Equal(t, DefaultCapacity, s.Capacity())
	assert.Equal(t, 0, s.Depth())
}

func TestStore_AttachIsIdempotentForStorage(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Push(7))

	// A second attach must not reallocate or clear the stack.
	require.NoError(t, s.Attach())
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, 2, s.Attached())
}

func TestStore_LIFOOrder(t *testing.T) {
	s := attached(t)

	values := []int32{3, 1, 4, 1, 5, 9, 2, 6}
	for _, v := range values {
		require.NoError(t, s.Push(v))
	}

	for i := len(values) - 1; i >= 0; i-- {
		got, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, values[i], got)
	}

	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)
}

func TestStore_PushFailsWhenFull(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Resize(3))

	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	require.NoError(t, s.Push(3))

	err := s.Push(4)
	assert.ErrorIs(t, err, ErrStackFull)
	assert.Equal(t, 3, s.Depth())
}

func TestStore_PopFailsWhenEmpty(t *testing.T) {
	s := attached(t)

	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)
	assert.Equal(t, 0, s.Depth())
}

func TestStore_OperationsOnUnattachedStore(t *testing.T) {
	s := New()

	// Capacity is zero, so a push reports full and a pop reports empty.
	assert.ErrorIs(t, s.Push(1), ErrStackFull)
	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)
}

func TestStore_ResizeGrowPreservesLiveData(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Resize(5))

	for _, v := range []int32{10, 20, 30, 40, 50} {
		require.NoError(t, s.Push(v))
	}

	require.NoError(t, s.Resize(10))
	assert.Equal(t, 10, s.Capacity())
	assert.Equal(t, 5, s.Depth())

	for _, want := range []int32{50, 40, 30, 20, 10} {
		got, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStore_ResizeShrinkClampsTop(t *testing.T) {
	s := attached(t)
	for _, v := range []int32{1, 2, 3, 4, 5} {
		require.NoError(t, s.Push(v))
	}

	// Shrinking below the depth keeps the bottom elements and discards
	// the ones nearest the top.
	require.NoError(t, s.Resize(3))
	assert.Equal(t, 3, s.Capacity())
	assert.Equal(t, 3, s.Depth())
	assert.Equal(t, []int32{1, 2, 3}, s.Snapshot())

	got, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, int32(3), got)
}

func TestStore_ResizeRejectsInvalidCapacity(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Push(42))

	for _, bad := range []int{0, -1, MaxCapacity + 1} {
		err := s.Resize(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, "capacity %d", bad)
	}

	// Failed resizes leave capacity and depth untouched.
	assert.Equal(t, DefaultCapacity, s.Capacity())
	assert.Equal(t, 1, s.Depth())
}

func TestStore_LimitsAreConfigurable(t *testing.T) {
	s := NewWithLimits(8, 16)
	require.NoError(t, s.Attach())
	assert.Equal(t, 8, s.Capacity())

	require.NoError(t, s.Resize(16))
	assert.ErrorIs(t, s.Resize(17), ErrInvalidArgument)
}

func TestStore_LimitsFallBackWhenOutOfRange(t *testing.T) {
	s := NewWithLimits(0, MaxCapacity*2)
	require.NoError(t, s.Attach())
	assert.Equal(t, MaxCapacity, s.Capacity())
	assert.ErrorIs(t, s.Resize(MaxCapacity+1), ErrInvalidArgument)
}

func TestStore_DetachFreesOnLastSession(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Attach())
	require.NoError(t, s.Push(99))

	// First detach: one session remains, state survives.
	s.Detach()
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, DefaultCapacity, s.Capacity())

	// Last detach frees the buffer.
	s.Detach()
	assert.Equal(t, 0, s.Depth())
	assert.Equal(t, 0, s.Capacity())
}

func TestStore_ReattachStartsEmpty(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))

	s.Detach()
	require.NoError(t, s.Attach())

	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)
}

func TestStore_ForceResetDropsSessionsAndData(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Attach())
	require.NoError(t, s.Push(5))

	s.ForceReset()
	assert.Equal(t, 0, s.Attached())
	assert.Equal(t, 0, s.Capacity())
	assert.ErrorIs(t, s.Push(1), ErrStackFull)
}

func TestStore_PushPopScenario(t *testing.T) {
	s := attached(t)

	require.NoError(t, s.Push(10))
	require.NoError(t, s.Push(20))

	got, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, int32(20), got)

	got, err = s.Pop()
	require.NoError(t, err)
	assert.Equal(t, int32(10), got)

	_, err = s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)
}

func TestStore_ResizeFullScenario(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Resize(2))

	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	assert.ErrorIs(t, s.Push(3), ErrStackFull)
}

func TestStore_ConcurrentPushPopKeepsInvariants(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Resize(64))

	const workers = 8
	const opsPerWorker = 500

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(seed int32) {
			defer wg.Done()
			for j := 0; j < opsPerWorker; j++ {
				if j%2 == 0 {
					// Full is an acceptable outcome under contention.
					err := s.Push(seed)
					if err != nil {
						assert.ErrorIs(t, err, ErrStackFull)
					}
				} else {
					_, err := s.Pop()
					if err != nil {
						assert.ErrorIs(t, err, ErrStackEmpty)
					}
				}
			}
		}(int32(i))
	}
	wg.Wait()

	depth := s.Depth()
	assert.GreaterOrEqual(t, depth, 0)
	assert.LessOrEqual(t, depth, s.Capacity())
}

func TestStore_ConcurrentResizeNeverOverflows(t *testing.T) {
	s := attached(t)
	require.NoError(t, s.Resize(32))

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			_ = s.Push(int32(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			_, _ = s.Pop()
		}
	}()
	go func() {
		defer wg.Done()
		sizes := []int{8, 64, 16, 32, 4, 128}
		for i := 0; i < 300; i++ {
			assert.NoError(t, s.Resize(sizes[i%len(sizes)]))
		}
	}()
	wg.Wait()

	assert.LessOrEqual(t, s.Depth(), s.Capacity())
}
