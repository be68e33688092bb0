// Package testutil holds deterministic helpers shared by tests: a
// logical clock for stable trace sequence numbers and a fixed session
// token generator for stable server logs and journals.
package testutil

import "sync"

// DeterministicClock is a thread-safe monotonic logical clock.
//
// The harness assigns trace sequence numbers from it so the same
// scenario always produces the same trace, and it can be Reset so one
// scenario can run repeatedly with identical numbering.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last assigned sequence number without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock so the next call to Next returns 1.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
