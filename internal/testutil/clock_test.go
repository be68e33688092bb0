package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_Monotonic(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Next()
	clock.Next()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_NoDuplicatesUnderConcurrency(t *testing.T) {
	clock := NewDeterministicClock()
	const workers = 16
	const perWorker = 200

	seen := make([][]int64, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		seen[i] = make([]int64, 0, perWorker)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				seen[idx] = append(seen[idx], clock.Next())
			}
		}(i)
	}
	wg.Wait()

	all := make(map[int64]bool, workers*perWorker)
	for _, vals := range seen {
		for _, v := range vals {
			assert.False(t, all[v], "duplicate seq %d", v)
			all[v] = true
		}
	}
	assert.Len(t, all, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), clock.Current())
}

func TestFixedTokenGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedTokenGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
