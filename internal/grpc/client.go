package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/observability"
	"github.com/oriys/oapi/internal/transport"
	"github.com/oriys/oapi/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a transport.Connection to an Automation service. Addresses use
// the same forms as the wire transport.
type Client struct {
	addr        wire.Address
	dialTimeout time.Duration

	mu   sync.Mutex
	conn *grpc.ClientConn
}

// NewClient returns an unconnected client for addr.
func NewClient(addr string, dialTimeout time.Duration) (*Client, error) {
	a, err := wire.ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	return &Client{addr: a, dialTimeout: dialTimeout}, nil
}

// Open creates the client connection and pings the service.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	addr := c.addr
	conn, err := grpc.NewClient("passthrough:///"+addr.String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return addr.Dial(ctx, c.dialTimeout)
		}),
	)
	if err != nil {
		return fmt.Errorf("grpc client %s: %w", addr, err)
	}

	pctx := ctx
	if c.dialTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, c.dialTimeout)
		defer cancel()
	}
	if err := conn.Invoke(pctx, PingMethod, &structpb.Struct{}, &structpb.Struct{}, grpc.WaitForReady(true)); err != nil {
		conn.Close()
		if pctx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%w: ping %s: %v", transport.ErrComponentUnavailable, addr, err)
		}
		return fromStatus(err)
	}

	c.conn = conn
	metrics.IncConnections()
	logging.Op().Debug("endpoint connected", "addr", addr.String(), "transport", "grpc")
	return nil
}

// Invoke sends call over the Call method.
func (c *Client) Invoke(ctx context.Context, call *transport.Call) (*transport.Reply, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("%w: not connected", transport.ErrComponentUnavailable)
	}

	if tc := observability.ExtractTraceContext(ctx); !tc.IsZero() {
		ctx = metadata.AppendToOutgoingContext(ctx, "traceparent", tc.TraceParent, "tracestate", tc.TraceState)
	}

	start := time.Now()
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, CallMethod, wire.CallToProto(call), out); err != nil {
		return nil, fromStatus(err)
	}
	metrics.RecordFrameLatency("grpc_call", float64(time.Since(start).Microseconds())/1000.0)

	reply, err := wire.ReplyFromProto(out)
	if err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return reply, nil
}

// Close releases the client connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	metrics.DecConnections()
	return err
}
