package server

import (
	"encoding/binary"

	"github.com/evgd/stackd/internal/device"
	"github.com/evgd/stackd/internal/journal"
	"github.com/evgd/stackd/internal/stack"
	"github.com/evgd/stackd/internal/wire"
)

// session is one connection's view of the shared device.
type session struct {
	token  string
	dev    *device.Device
	server *Server
}

// open attaches the session and journals the attach. Runs under opMu so
// the recorded post-state is the state this attach produced.
func (s *session) open() {
	s.server.opMu.Lock()
	defer s.server.opMu.Unlock()

	err := s.dev.Open()
	s.journal(journal.OpAttach, nil, nil, wire.StatusOf(err))
}

// close detaches the session and journals the detach.
func (s *session) close() {
	s.server.opMu.Lock()
	defer s.server.opMu.Unlock()

	_ = s.dev.Close()
	s.journal(journal.OpDetach, nil, nil, wire.StatusOK)
}

// dispatch executes one request against the device and builds the
// response. Each operation and its journal record run under opMu.
func (s *session) dispatch(req wire.Request) wire.Response {
	s.server.opMu.Lock()
	defer s.server.opMu.Unlock()

	switch req.Op {
	case wire.OpRead:
		return s.pop()
	case wire.OpWrite:
		return s.push(req.Value)
	case wire.OpIoctl:
		return s.ioctl(req.Cmd, req.Arg)
	default:
		// Unknown opcodes are a protocol error, reported like a bad
		// control command.
		return wire.Response{Status: wire.StatusInvalid}
	}
}

func (s *session) pop() wire.Response {
	var buf [stack.ElemSize]byte
	_, err := s.dev.Read(buf[:])
	status := wire.StatusOf(err)

	if err != nil {
		s.journal(journal.OpPop, nil, nil, status)
		return wire.Response{Status: status}
	}

	v := int32(binary.LittleEndian.Uint32(buf[:]))
	s.journal(journal.OpPop, &v, nil, status)
	return wire.ValueResponse(v)
}

func (s *session) push(v int32) wire.Response {
	var buf [stack.ElemSize]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := s.dev.Write(buf[:])
	status := wire.StatusOf(err)

	if err != nil {
		s.journal(journal.OpPush, nil, nil, status)
		return wire.Response{Status: status}
	}
	s.journal(journal.OpPush, &v, nil, status)
	return wire.Response{Status: wire.StatusOK}
}

func (s *session) ioctl(cmd, arg uint32) wire.Response {
	switch cmd {
	case device.CmdStat:
		// Read-only; not journaled.
		depth, capacity := s.dev.Stat()
		return wire.StatResponse(depth, capacity)
	case device.CmdResize:
		err := s.dev.Control(cmd, arg)
		status := wire.StatusOf(err)
		requested := int(arg)
		s.journal(journal.OpResize, nil, &requested, status)
		return wire.Response{Status: status}
	default:
		err := s.dev.Control(cmd, arg)
		return wire.Response{Status: wire.StatusOf(err)}
	}
}

// journal records an event with the device's current post-operation
// state. Must be called with opMu held.
func (s *session) journal(op journal.Op, value *int32, arg *int, status wire.Status) {
	depth, capacity := s.dev.Stat()
	s.server.record(journal.Event{
		Session:  s.token,
		Op:       op,
		Value:    value,
		Arg:      arg,
		Status:   status.String(),
		Depth:    depth,
		Capacity: capacity,
	})
}
