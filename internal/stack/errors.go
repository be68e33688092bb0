package stack

import "errors"

// Error kinds reported by the store. All are detected synchronously and
// leave the store unmutated; none is retried internally.
var (
	// ErrStackFull is returned by Push when no free slot exists. The
	// caller may Pop or Resize and retry.
	ErrStackFull = errors.New("stack full")

	// ErrStackEmpty is returned by Pop when no element exists. The
	// caller may Push and retry.
	ErrStackEmpty = errors.New("stack empty")

	// ErrInvalidArgument is returned by Resize for a capacity outside
	// (0, MaxCapacity], and by the device boundary for an unrecognized
	// control command.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfMemory reports allocation failure. The Go runtime aborts
	// on heap exhaustion, so this kind is effectively unreachable in
	// process; it exists so the wire status taxonomy is complete.
	ErrOutOfMemory = errors.New("out of memory")
)
