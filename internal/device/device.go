// Package device is the trust boundary between raw caller bytes and the
// stack store. It mirrors a character device's contract: Read pops one
// element and emits its four bytes, Write consumes four bytes and
// pushes, Control dispatches numeric command codes.
//
// Byte-movement failures are reported as ErrTransferFault and kept
// distinct from the store's logical errors; a fault never mutates the
// stack.
package device

import (
	"encoding/binary"
	"errors"

	"github.com/evgd/stackd/internal/stack"
)

// Control command codes. These are the numeric codes accepted on the
// wire, so they are part of the external contract.
const (
	// CmdResize replaces the backing buffer; the argument is the new
	// capacity in elements.
	CmdResize uint32 = 1

	// CmdStat reports current depth and capacity. Read-only; the
	// argument is ignored.
	CmdStat uint32 = 2
)

// ErrTransferFault reports a failure to move bytes across the trust
// boundary, such as a caller buffer shorter than one element. It is the
// analogue of an I/O fault on a user-space copy.
var ErrTransferFault = errors.New("transfer fault")

// Device adapts one session's byte-level operations onto the shared
// store. Devices are cheap; the server creates one per connection. All
// synchronization lives in the store.
type Device struct {
	store *stack.Store
}

// New wraps the given store. The store is shared; the device holds no
// state of its own beyond the reference.
func New(store *stack.Store) *Device {
	return &Device{store: store}
}

// Open attaches a session to the store, allocating it if this is the
// first live session.
func (d *Device) Open() error {
	return d.store.Attach()
}

// Close detaches the session. The store is freed when the last session
// closes.
func (d *Device) Close() error {
	d.store.Detach()
	return nil
}

// Read pops the top element and writes its four little-endian bytes
// into p. Returns the number of bytes transferred (always
// stack.ElemSize on success).
//
// A buffer shorter than one element is a transfer fault and leaves the
// stack unchanged; an empty stack is ErrStackEmpty.
func (d *Device) Read(p []byte) (int, error) {
	if len(p) < stack.ElemSize {
		return 0, ErrTransferFault
	}
	v, err := d.store.Pop()
	if err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint32(p[:stack.ElemSize], uint32(v))
	return stack.ElemSize, nil
}

// Write decodes one little-endian element from p and pushes it. Returns
// the number of bytes consumed (always stack.ElemSize on success).
//
// A buffer shorter than one element is a transfer fault; a full stack
// is ErrStackFull. Extra bytes beyond the first element are ignored.
func (d *Device) Write(p []byte) (int, error) {
	if len(p) < stack.ElemSize {
		return 0, ErrTransferFault
	}
	v := int32(binary.LittleEndian.Uint32(p[:stack.ElemSize]))
	if err := d.store.Push(v); err != nil {
		return 0, err
	}
	return stack.ElemSize, nil
}

// Control dispatches a command code. CmdResize resizes the store to arg
// elements; any other code fails with ErrInvalidArgument. CmdStat is
// handled separately via Stat because it returns data.
func (d *Device) Control(cmd, arg uint32) error {
	switch cmd {
	case CmdResize:
		return d.store.Resize(int(arg))
	default:
		return stack.ErrInvalidArgument
	}
}

// Stat reports the store's current depth and capacity.
func (d *Device) Stat() (depth, capacity int) {
	return d.store.Depth(), d.store.Capacity()
}
