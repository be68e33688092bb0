// Package client is the Go client for a running stackd daemon. The CLI
// and the integration tests both go through it.
//
// A Client is one session: dialing attaches the shared stack, Close
// detaches it. Failed operations return the same sentinel errors the
// store itself uses (stack.ErrStackEmpty, stack.ErrStackFull, ...), so
// callers can errors.Is on them.
package client

import (
	"fmt"
	"net"

	"github.com/evgd/stackd/internal/device"
	"github.com/evgd/stackd/internal/wire"
)

// Stat describes the shared stack's current state.
type Stat struct {
	Depth    int `json:"depth"`
	Capacity int `json:"capacity"`
}

// Client is a connected session. Not safe for concurrent use; open one
// client per goroutine (the daemon serializes operations globally
// anyway).
type Client struct {
	conn net.Conn
}

// Dial connects to the daemon's Unix socket and attaches a session.
func Dial(socket string) (*Client, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socket, err)
	}
	return &Client{conn: conn}, nil
}

// Close detaches the session.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Push places v on top of the shared stack.
func (c *Client) Push(v int32) error {
	resp, err := c.roundTrip(wire.Request{Op: wire.OpWrite, Value: v})
	if err != nil {
		return err
	}
	return resp.Status.Err()
}

// Pop removes and returns the top element.
func (c *Client) Pop() (int32, error) {
	resp, err := c.roundTrip(wire.Request{Op: wire.OpRead})
	if err != nil {
		return 0, err
	}
	if err := resp.Status.Err(); err != nil {
		return 0, err
	}
	return resp.Value()
}

// Resize sets the stack's capacity to n elements.
func (c *Client) Resize(n int) error {
	resp, err := c.roundTrip(wire.Request{
		Op:  wire.OpIoctl,
		Cmd: device.CmdResize,
		Arg: uint32(n),
	})
	if err != nil {
		return err
	}
	return resp.Status.Err()
}

// Stat reports the stack's depth and capacity.
func (c *Client) Stat() (Stat, error) {
	resp, err := c.roundTrip(wire.Request{Op: wire.OpIoctl, Cmd: device.CmdStat})
	if err != nil {
		return Stat{}, err
	}
	if err := resp.Status.Err(); err != nil {
		return Stat{}, err
	}
	depth, capacity, err := resp.Stat()
	if err != nil {
		return Stat{}, err
	}
	return Stat{Depth: depth, Capacity: capacity}, nil
}

func (c *Client) roundTrip(req wire.Request) (wire.Response, error) {
	if err := wire.WriteRequest(c.conn, req); err != nil {
		return wire.Response{}, err
	}
	return wire.ReadResponse(c.conn)
}
