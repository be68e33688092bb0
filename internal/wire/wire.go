// Package wire defines the framed request/response protocol spoken
// over the stackd Unix socket.
//
// A connection is a session: the server attaches the store when the
// connection is accepted and detaches it when the connection closes,
// so the protocol carries no open/close operations.
//
// Frames are little-endian, matching the byte order of elements at the
// device boundary.
//
// Request: one opcode byte followed by a fixed payload per op.
//
//	OpRead   (no payload)            pop the top element
//	OpWrite  value int32             push one element
//	OpIoctl  cmd uint32, arg uint32  control call
//
// Response: one status byte, one payload-length byte, then the payload.
// OpRead answers with the popped element; OpIoctl with device.CmdStat
// answers with depth and capacity as two uint32s.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/evgd/stackd/internal/device"
	"github.com/evgd/stackd/internal/stack"
)

// Opcodes.
const (
	OpRead  uint8 = 1
	OpWrite uint8 = 2
	OpIoctl uint8 = 3
)

// Status is the one-byte result code of a response. The codes mirror
// the error taxonomy one to one so a client can recover the exact
// failure kind.
type Status uint8

const (
	StatusOK      Status = 0
	StatusEmpty   Status = 1 // pop on an empty stack
	StatusFull    Status = 2 // push on a full stack
	StatusInvalid Status = 3 // bad resize capacity or unknown command
	StatusNoMem   Status = 4 // allocation failure
	StatusFault   Status = 5 // transfer fault at the byte boundary
)

// String returns the lowercase name used in logs and the journal.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFull:
		return "full"
	case StatusInvalid:
		return "invalid"
	case StatusNoMem:
		return "nomem"
	case StatusFault:
		return "fault"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// StatusOf maps an operation error to its wire status. A nil error is
// StatusOK; an unrecognized error is reported as a fault rather than
// leaked as a new code.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, stack.ErrStackEmpty):
		return StatusEmpty
	case errors.Is(err, stack.ErrStackFull):
		return StatusFull
	case errors.Is(err, stack.ErrInvalidArgument):
		return StatusInvalid
	case errors.Is(err, stack.ErrOutOfMemory):
		return StatusNoMem
	case errors.Is(err, device.ErrTransferFault):
		return StatusFault
	default:
		return StatusFault
	}
}

// Err is the inverse of StatusOf: it recovers the sentinel error for a
// failed status so callers can use errors.Is on client results.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusEmpty:
		return stack.ErrStackEmpty
	case StatusFull:
		return stack.ErrStackFull
	case StatusInvalid:
		return stack.ErrInvalidArgument
	case StatusNoMem:
		return stack.ErrOutOfMemory
	case StatusFault:
		return device.ErrTransferFault
	default:
		return fmt.Errorf("unknown wire status %d", uint8(s))
	}
}

// Request is one client operation.
type Request struct {
	Op    uint8
	Value int32  // OpWrite
	Cmd   uint32 // OpIoctl
	Arg   uint32 // OpIoctl
}

// Response is the server's answer to one request.
type Response struct {
	Status  Status
	Payload []byte
}

// ValueResponse builds an OK response carrying one element.
func ValueResponse(v int32) Response {
	p := make([]byte, stack.ElemSize)
	binary.LittleEndian.PutUint32(p, uint32(v))
	return Response{Status: StatusOK, Payload: p}
}

// StatResponse builds an OK response carrying depth and capacity.
func StatResponse(depth, capacity int) Response {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint32(p[0:4], uint32(depth))
	binary.LittleEndian.PutUint32(p[4:8], uint32(capacity))
	return Response{Status: StatusOK, Payload: p}
}

// Value decodes an element payload.
func (r Response) Value() (int32, error) {
	if len(r.Payload) < stack.ElemSize {
		return 0, fmt.Errorf("value payload too short: %d bytes", len(r.Payload))
	}
	return int32(binary.LittleEndian.Uint32(r.Payload[:stack.ElemSize])), nil
}

// Stat decodes a depth/capacity payload.
func (r Response) Stat() (depth, capacity int, err error) {
	if len(r.Payload) < 8 {
		return 0, 0, fmt.Errorf("stat payload too short: %d bytes", len(r.Payload))
	}
	depth = int(binary.LittleEndian.Uint32(r.Payload[0:4]))
	capacity = int(binary.LittleEndian.Uint32(r.Payload[4:8]))
	return depth, capacity, nil
}

// WriteRequest encodes req onto w.
func WriteRequest(w io.Writer, req Request) error {
	var frame []byte
	switch req.Op {
	case OpRead:
		frame = []byte{req.Op}
	case OpWrite:
		frame = make([]byte, 1+stack.ElemSize)
		frame[0] = req.Op
		binary.LittleEndian.PutUint32(frame[1:], uint32(req.Value))
	case OpIoctl:
		frame = make([]byte, 1+8)
		frame[0] = req.Op
		binary.LittleEndian.PutUint32(frame[1:5], req.Cmd)
		binary.LittleEndian.PutUint32(frame[5:9], req.Arg)
	default:
		return fmt.Errorf("unknown opcode %d", req.Op)
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// ReadRequest decodes one request from r. io.EOF is returned unchanged
// when the connection closes cleanly between requests.
func ReadRequest(r io.Reader) (Request, error) {
	var op [1]byte
	if _, err := io.ReadFull(r, op[:]); err != nil {
		if err == io.EOF {
			return Request{}, io.EOF
		}
		return Request{}, fmt.Errorf("read opcode: %w", err)
	}

	req := Request{Op: op[0]}
	switch req.Op {
	case OpRead:
		return req, nil
	case OpWrite:
		var p [stack.ElemSize]byte
		if _, err := io.ReadFull(r, p[:]); err != nil {
			return Request{}, fmt.Errorf("read write payload: %w", err)
		}
		req.Value = int32(binary.LittleEndian.Uint32(p[:]))
		return req, nil
	case OpIoctl:
		var p [8]byte
		if _, err := io.ReadFull(r, p[:]); err != nil {
			return Request{}, fmt.Errorf("read ioctl payload: %w", err)
		}
		req.Cmd = binary.LittleEndian.Uint32(p[0:4])
		req.Arg = binary.LittleEndian.Uint32(p[4:8])
		return req, nil
	default:
		return Request{}, fmt.Errorf("unknown opcode %d", req.Op)
	}
}

// WriteResponse encodes resp onto w.
func WriteResponse(w io.Writer, resp Response) error {
	if len(resp.Payload) > 255 {
		return fmt.Errorf("response payload too large: %d bytes", len(resp.Payload))
	}
	frame := make([]byte, 2+len(resp.Payload))
	frame[0] = uint8(resp.Status)
	frame[1] = uint8(len(resp.Payload))
	copy(frame[2:], resp.Payload)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// ReadResponse decodes one response from r.
func ReadResponse(r io.Reader) (Response, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Response{}, fmt.Errorf("read response header: %w", err)
	}
	resp := Response{Status: Status(head[0])}
	if n := int(head[1]); n > 0 {
		resp.Payload = make([]byte, n)
		if _, err := io.ReadFull(r, resp.Payload); err != nil {
			return Response{}, fmt.Errorf("read response payload: %w", err)
		}
	}
	return resp, nil
}
