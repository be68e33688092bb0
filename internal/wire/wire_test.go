package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgd/stackd/internal/device"
	"github.com/evgd/stackd/internal/stack"
)

func TestRequest_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		req  Request
	}{
		{"read", Request{Op: OpRead}},
		{"write positive", Request{Op: OpWrite, Value: 123456}},
		{"write negative", Request{Op: OpWrite, Value: -1}},
		{"ioctl resize", Request{Op: OpIoctl, Cmd: device.CmdResize, Arg: 64}},
		{"ioctl stat", Request{Op: OpIoctl, Cmd: device.CmdStat}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRequest(&buf, tc.req))

			got, err := ReadRequest(&buf)
			require.NoError(t, err)
			assert.Equal(t, tc.req, got)
		})
	}
}

func TestReadRequest_EOFOnCleanClose(t *testing.T) {
	_, err := ReadRequest(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequest_RejectsUnknownOpcode(t *testing.T) {
	_, err := ReadRequest(bytes.NewReader([]byte{0xFF}))
	assert.ErrorContains(t, err, "unknown opcode")
}

func TestWriteRequest_RejectsUnknownOpcode(t *testing.T) {
	err := WriteRequest(&bytes.Buffer{}, Request{Op: 42})
	assert.ErrorContains(t, err, "unknown opcode")
}

func TestResponse_ValueRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, ValueResponse(-7)))

	resp, err := ReadResponse(&buf)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)

	v, err := resp.Value()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), v)
}

func TestResponse_StatRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, StatResponse(5, 1024)))

	resp, err := ReadResponse(&buf)
	require.NoError(t, err)

	depth, capacity, err := resp.Stat()
	require.NoError(t, err)
	assert.Equal(t, 5, depth)
	assert.Equal(t, 1024, capacity)
}

func TestResponse_ErrorStatusHasNoPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, Response{Status: StatusEmpty}))

	resp, err := ReadResponse(&buf)
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, resp.Status)
	assert.Empty(t, resp.Payload)
}

func TestStatusOf_MapsErrorTaxonomy(t *testing.T) {
	assert.Equal(t, StatusOK, StatusOf(nil))
	assert.Equal(t, StatusEmpty, StatusOf(stack.ErrStackEmpty))
	assert.Equal(t, StatusFull, StatusOf(stack.ErrStackFull))
	assert.Equal(t, StatusInvalid, StatusOf(stack.ErrInvalidArgument))
	assert.Equal(t, StatusNoMem, StatusOf(stack.ErrOutOfMemory))
	assert.Equal(t, StatusFault, StatusOf(device.ErrTransferFault))
	assert.Equal(t, StatusFault, StatusOf(io.ErrUnexpectedEOF))
}

func TestStatus_ErrIsInverseOfStatusOf(t *testing.T) {
	for _, s := range []Status{StatusEmpty, StatusFull, StatusInvalid, StatusNoMem, StatusFault} {
		assert.Equal(t, s, StatusOf(s.Err()), "status %s", s)
	}
	assert.NoError(t, StatusOK.Err())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "empty", StatusEmpty.String())
	assert.Equal(t, "full", StatusFull.String())
	assert.Equal(t, "invalid", StatusInvalid.String())
	assert.Equal(t, "nomem", StatusNoMem.String())
	assert.Equal(t, "fault", StatusFault.String())
	assert.Equal(t, "status(200)", Status(200).String())
}
