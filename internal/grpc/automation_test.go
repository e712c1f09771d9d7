package grpc

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"
	"time"

	"github.com/oriys/oapi/internal/stub"
	"github.com/oriys/oapi/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func startServer(t *testing.T, ep transport.Endpoint) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := NewServer(ep)
	go func() { _ = s.Serve(ln) }()
	t.Cleanup(s.Stop)
	return "tcp://" + ln.Addr().String()
}

func TestCallOverLoopback(t *testing.T) {
	ep := stub.New()
	ep.Respond("cPointObj", "GetCoordCartesian", 0, map[int]transport.Value{
		1: transport.Double(0.1 + 0.2),
		3: transport.Double(math.Inf(-1)),
	})
	ep.Respond("cFile", "Save", 2, nil)
	addr := startServer(t, ep)

	c, err := NewClient(addr, 2*time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	defer c.Close()

	call := &transport.Call{
		ID:     "g-1",
		Handle: "Sap2000.cPointObj",
		Method: "GetCoordCartesian",
		Args: []transport.Value{
			transport.Str("7"),
			transport.Zero(transport.KindDouble).AsRef(),
			transport.Zero(transport.KindDouble).AsRef(),
			transport.Zero(transport.KindDouble).AsRef(),
			transport.Str("Global"),
		},
	}
	reply, err := c.Invoke(context.Background(), call)
	require.NoError(t, err)
	require.Len(t, reply.Args, 5)
	assert.Equal(t, math.Float64bits(0.1+0.2), math.Float64bits(reply.Args[1].Double))
	assert.False(t, reply.Args[2].IsValid())
	assert.True(t, math.IsInf(reply.Args[3].Double, -1))

	last, ok := ep.LastCall()
	require.True(t, ok)
	assert.Equal(t, "g-1", last.ID)
	assert.True(t, last.Args[1].Ref)

	reply, err = c.Invoke(context.Background(), &transport.Call{Handle: "Sap2000.cFile", Method: "Save", Args: []transport.Value{transport.Str("")}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), reply.Status)
}

func TestErrorsMapToSentinels(t *testing.T) {
	ep := stub.New()
	addr := startServer(t, ep)
	c, err := NewClient(addr, 2*time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	defer c.Close()

	_, err = c.Invoke(context.Background(), &transport.Call{Handle: "Sap2000.cFile", Method: "Nope"})
	assert.ErrorIs(t, err, transport.ErrUnknownMethod)

	ep.SetUnavailable(true)
	_, err = c.Invoke(context.Background(), &transport.Call{Handle: "Sap2000.cFile", Method: "Nope"})
	assert.ErrorIs(t, err, transport.ErrComponentUnavailable)

	_, err = c.Invoke(context.Background(), &transport.Call{Method: "Nope"})
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestOpenFailsWithoutServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := "tcp://" + ln.Addr().String()
	ln.Close()

	c, err := NewClient(addr, 200*time.Millisecond)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Open(context.Background()), transport.ErrComponentUnavailable)

	_, err = c.Invoke(context.Background(), &transport.Call{Handle: "a.b", Method: "M"})
	assert.ErrorIs(t, err, transport.ErrComponentUnavailable)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{transport.ErrComponentUnavailable, codes.Unavailable},
		{transport.ErrUnknownMethod, codes.Unimplemented},
		{context.Canceled, codes.Canceled},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		st, _ := status.FromError(toStatus(tt.err))
		assert.Equal(t, tt.code, st.Code(), tt.err.Error())
	}
	assert.ErrorIs(t, fromStatus(status.Error(codes.Unavailable, "x")), transport.ErrComponentUnavailable)
	assert.ErrorIs(t, fromStatus(status.Error(codes.Unimplemented, "x")), transport.ErrUnknownMethod)
	assert.Nil(t, toStatus(nil))
}
