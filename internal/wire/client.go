package wire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/observability"
	"github.com/oriys/oapi/internal/transport"
)

// Client is a transport.Connection over a framed socket. It holds at most
// one connection and never redials on its own: after a connection failure
// every Invoke reports ErrComponentUnavailable until Open succeeds again.
type Client struct {
	addr        Address
	codec       Codec
	dialTimeout time.Duration
	dial        func(ctx context.Context) (net.Conn, error)

	mu   sync.Mutex
	conn net.Conn
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCodec selects the frame codec. The default is JSONCodec.
func WithCodec(c Codec) ClientOption {
	return func(cl *Client) { cl.codec = c }
}

// WithDialTimeout bounds Open's dial and handshake.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.dialTimeout = d }
}

// WithConn makes the client use conn instead of dialing. Open pings
// over it; once closed it cannot be reopened.
func WithConn(conn net.Conn) ClientOption {
	return func(cl *Client) {
		used := false
		cl.dial = func(context.Context) (net.Conn, error) {
			if used {
				return nil, net.ErrClosed
			}
			used = true
			return conn, nil
		}
	}
}

// NewClient returns an unconnected client for addr.
func NewClient(addr string, opts ...ClientOption) (*Client, error) {
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	c := &Client{addr: a, codec: JSONCodec{}, dialTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	if c.dial == nil {
		c.dial = func(ctx context.Context) (net.Conn, error) {
			return c.addr.Dial(ctx, c.dialTimeout)
		}
	}
	return c, nil
}

// Addr returns the address the client dials.
func (c *Client) Addr() Address { return c.addr }

// Open connects and checks the peer with a ping. It is a no-op when already
// connected.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	start := time.Now()
	conn, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", transport.ErrComponentUnavailable, c.addr, err)
	}
	metrics.RecordFrameLatency("connect", msSince(start))
	c.conn = conn
	metrics.IncConnections()

	if err := c.pingLocked(ctx); err != nil {
		c.dropLocked()
		return err
	}
	logging.Op().Debug("endpoint connected", "addr", c.addr.String(), "codec", c.codec.Name())
	return nil
}

// Ping round-trips a ping frame.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("%w: not connected", transport.ErrComponentUnavailable)
	}
	return c.pingLocked(ctx)
}

func (c *Client) pingLocked(ctx context.Context) error {
	id := uuid.NewString()
	resp, err := c.roundTripLocked(ctx, &Envelope{Type: MsgPing, ID: id})
	if err != nil {
		return err
	}
	if resp.Type != MsgPong {
		c.dropLocked()
		return fmt.Errorf("%w: unexpected %s frame to ping", transport.ErrComponentUnavailable, resp.Type)
	}
	return nil
}

// Invoke sends call and waits for its reply. Frames from two goroutines
// never interleave; whole calls are serialized by the client.
func (c *Client) Invoke(ctx context.Context, call *transport.Call) (*transport.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, fmt.Errorf("%w: not connected", transport.ErrComponentUnavailable)
	}

	id := call.ID
	if id == "" {
		id = uuid.NewString()
	}
	resp, err := c.roundTripLocked(ctx, &Envelope{
		Type:  MsgCall,
		ID:    id,
		Call:  call,
		Trace: observability.ExtractTraceContext(ctx),
	})
	if err != nil {
		return nil, err
	}

	switch resp.Type {
	case MsgReply:
		if resp.Reply == nil {
			return nil, fmt.Errorf("reply frame without payload")
		}
		return resp.Reply, nil
	case MsgError:
		if resp.Error == nil {
			return nil, &RemoteError{Code: CodeInternal}
		}
		return nil, resp.Error.Err()
	}
	c.dropLocked()
	return nil, fmt.Errorf("%w: unexpected %s frame", transport.ErrComponentUnavailable, resp.Type)
}

// roundTripLocked writes env and reads frames until one carries env's id.
// Any socket failure drops the connection.
func (c *Client) roundTripLocked(ctx context.Context, env *Envelope) (*Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := c.conn
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
		defer conn.SetDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	data, err := c.codec.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", env.Type, err)
	}
	start := time.Now()
	if err := WriteFrame(conn, data); err != nil {
		return nil, c.failLocked(ctx, "send", err)
	}
	metrics.RecordFrameLatency("send", msSince(start))

	for {
		start = time.Now()
		frame, err := ReadFrame(conn)
		if err != nil {
			return nil, c.failLocked(ctx, "receive", err)
		}
		metrics.RecordFrameLatency("receive", msSince(start))

		var resp Envelope
		if err := c.codec.Unmarshal(frame, &resp); err != nil {
			c.dropLocked()
			return nil, fmt.Errorf("%w: decode frame: %v", transport.ErrComponentUnavailable, err)
		}
		if resp.ID == env.ID {
			return &resp, nil
		}
		// A reply to a call abandoned earlier on this connection.
		logging.Op().Debug("discarding stale frame", "id", resp.ID, "type", string(resp.Type))
	}
}

func (c *Client) failLocked(ctx context.Context, op string, err error) error {
	c.dropLocked()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if isConnErr(err) || errors.Is(err, ErrFrameTooLarge) {
		return fmt.Errorf("%w: %s: %v", transport.ErrComponentUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Close releases the connection. The client may be reopened.
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

func (c *Client) dropLocked() {
	if c.conn == nil {
		return
	}
	_ = c.conn.Close()
	c.conn = nil
	metrics.DecConnections()
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
