package journal

import (
	"context"
	"sync"
)

// Recorder decouples session handlers from journal writes.
//
// Handlers call Record from any goroutine; a single Run goroutine
// drains the queue into SQLite. The queue is unbounded so a slow disk
// never stalls stack operations, and the single writer keeps sequence
// numbers gap-free and strictly increasing.
type Recorder struct {
	journal *Journal

	mu      sync.Mutex
	pending []Event
	closed  bool
	nextSeq int64

	// signal coalesces wakeups for the Run loop (buffered, size 1).
	signal chan struct{}
}

// NewRecorder creates a recorder over an open journal, seeding the
// sequence counter from the journal's last event so numbering continues
// across restarts.
func NewRecorder(ctx context.Context, j *Journal) (*Recorder, error) {
	last, err := j.LastSeq(ctx)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		journal: j,
		pending: make([]Event, 0, 64),
		nextSeq: last,
		signal:  make(chan struct{}, 1),
	}, nil
}

// Record assigns the event its sequence number and queues it for the
// writer. Safe from any goroutine. Returns false once the recorder is
// closed; the event is then dropped, which only loses trace data, never
// stack state.
func (r *Recorder) Record(e Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.nextSeq++
	e.Seq = r.nextSeq
	r.pending = append(r.pending, e)

	select {
	case r.signal <- struct{}{}:
	default:
	}
	return true
}

// Close stops accepting events. Run drains whatever was recorded before
// Close and then returns.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// Run is the single-writer loop. It returns after the recorder is
// closed (or ctx is cancelled) and all queued events are flushed. Must
// be called from exactly one goroutine.
//
// Flush failures abort the loop and are returned; the daemon treats a
// broken journal as fatal for recording but not for stack service.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		for _, e := range r.take() {
			// Flush with a background context: queued events are still
			// written after cancellation so the log has no tail gap.
			if err := r.journal.Append(context.Background(), e); err != nil {
				return err
			}
		}

		r.mu.Lock()
		empty := len(r.pending) == 0
		closed := r.closed
		r.mu.Unlock()

		if empty && closed {
			return nil
		}
		if !empty {
			continue
		}

		select {
		case <-ctx.Done():
			r.Close()
		case <-r.signal:
		}
	}
}

// take swaps out the pending slice.
func (r *Recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	batch := r.pending
	r.pending = make([]Event, 0, 64)
	return batch
}
