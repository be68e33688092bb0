// Package stack implements the shared bounded int32 stack behind the
// stackd device boundary.
//
// There is exactly one Store per daemon. Every operation takes the
// store's single exclusive lock for its full duration, so no caller can
// ever observe a partially updated (buffer, capacity, top) triple. No
// operation blocks waiting for space or data: Push on a full store and
// Pop on an empty store fail immediately.
package stack

import "sync"

const (
	// DefaultCapacity is the number of elements allocated on the first
	// attach.
	DefaultCapacity = 1024

	// MaxCapacity bounds the capacity accepted by Resize.
	MaxCapacity = 1024

	// ElemSize is the width of one element in bytes.
	ElemSize = 4
)

// Store is a mutex-guarded, dynamically sized stack of int32 values.
//
// The backing buffer is allocated lazily on the first attach and freed
// when the last session detaches. Sessions are reference-counted:
// freeing on every detach would destroy state under any concurrent
// client, so the count is deliberate.
//
// Invariants (held whenever the lock is not taken):
//   - 0 <= top <= len(buf) <= MaxCapacity
//   - len(buf) == 0 implies top == 0
type Store struct {
	mu       sync.Mutex
	buf      []int32
	top      int
	attached int

	defaultCap int
	maxCap     int
}

// New creates an unattached Store with the standard limits. The buffer
// is not allocated until the first Attach.
func New() *Store {
	return NewWithLimits(DefaultCapacity, MaxCapacity)
}

// NewWithLimits creates an unattached Store with a custom initial
// capacity and resize bound. Values outside (0, MaxCapacity] fall back
// to the standard limits; the initial capacity never exceeds the bound.
func NewWithLimits(defaultCap, maxCap int) *Store {
	if maxCap <= 0 || maxCap > MaxCapacity {
		maxCap = MaxCapacity
	}
	if defaultCap <= 0 || defaultCap > maxCap {
		defaultCap = maxCap
	}
	return &Store{defaultCap: defaultCap, maxCap: maxCap}
}

// Attach registers a session. The first attach allocates the buffer at
// the store's initial capacity (DefaultCapacity unless configured) with
// an empty stack; later attaches while the buffer is live are no-ops
// beyond the count.
//
// The error return is reserved for allocation failure. The Go runtime
// aborts on heap exhaustion rather than reporting it, so Attach
// currently always succeeds; callers should still check.
func (s *Store) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		s.buf = make([]int32, s.defaultCap)
		s.top = 0
	}
	s.attached++
	return nil
}

// Detach releases one session. When the last session detaches the
// buffer is freed and all stored values are lost. Detach on a store
// with no sessions is a no-op.
func (s *Store) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached == 0 {
		return
	}
	s.attached--
	if s.attached == 0 {
		s.reset()
	}
}

// ForceReset unconditionally frees the buffer and drops all sessions.
// Used at daemon shutdown; racing operations fail afterwards instead of
// touching freed storage because they re-check state under the lock.
func (s *Store) ForceReset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attached = 0
	s.reset()
}

// reset must be called with the lock held.
func (s *Store) reset() {
	s.buf = nil
	s.top = 0
}

// Push places v on top of the stack. It fails with ErrStackFull when
// there is no free slot, leaving the store unchanged. An unattached
// store has capacity zero and therefore always reports full.
func (s *Store) Push(v int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.top >= len(s.buf) {
		return ErrStackFull
	}
	s.buf[s.top] = v
	s.top++
	return nil
}

// Pop removes and returns the most recently pushed value. It fails with
// ErrStackEmpty when there are no elements, leaving the store
// unchanged. The vacated slot is logically discarded, not zeroed.
func (s *Store) Pop() (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.top == 0 {
		return 0, ErrStackEmpty
	}
	s.top--
	return s.buf[s.top], nil
}

// Resize replaces the backing buffer with one of newCapacity slots,
// copying the bottom min(top, newCapacity) live elements forward. When
// the stack shrinks below its current depth the elements nearest the
// top are discarded and top is clamped, so top <= capacity always holds
// afterwards.
//
// newCapacity outside (0, maxCap] fails with ErrInvalidArgument and
// performs no mutation. Resize does not require an attached session; on
// an unattached store it simply allocates.
func (s *Store) Resize(newCapacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newCapacity <= 0 || newCapacity > s.maxCap {
		return ErrInvalidArgument
	}

	next := make([]int32, newCapacity)
	keep := s.top
	if keep > newCapacity {
		keep = newCapacity
	}
	copy(next, s.buf[:keep])
	s.buf = next
	s.top = keep
	return nil
}

// Depth returns the number of live elements.
func (s *Store) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.top
}

// Capacity returns the current allocated capacity. Zero means the
// buffer is unallocated.
func (s *Store) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Attached reports the number of live sessions.
func (s *Store) Attached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Snapshot returns a copy of the live elements, bottom first. Used by
// the conformance harness and the journal verifier; never aliases the
// internal buffer.
func (s *Store) Snapshot() []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int32, s.top)
	copy(out, s.buf[:s.top])
	return out
}
