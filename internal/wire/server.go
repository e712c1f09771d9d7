package wire

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/observability"
	"github.com/oriys/oapi/internal/transport"
)

// Server exposes a transport.Endpoint over framed connections. Frames on a
// connection are handled in order, one at a time.
type Server struct {
	ep    transport.Endpoint
	codec Codec

	mu       sync.Mutex
	ln       net.Listener
	conns    map[net.Conn]struct{}
	shutdown bool
	wg       sync.WaitGroup
}

// NewServer returns a server dispatching to ep. A nil codec means JSON.
func NewServer(ep transport.Endpoint, codec Codec) *Server {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Server{ep: ep, codec: codec, conns: make(map[net.Conn]struct{})}
}

// Serve accepts connections on ln until Shutdown. It returns nil after a
// shutdown and the accept error otherwise.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()

	logging.Op().Info("wire server listening", "addr", ln.Addr().String(), "codec", s.codec.Name())
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			down := s.shutdown
			s.mu.Unlock()
			if down {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		s.mu.Lock()
		if s.shutdown {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.serveConn(conn)
	}
}

// ServeConn handles a single connection until it closes. It is used for
// pre-established connections such as net.Pipe in tests.
func (s *Server) ServeConn(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()
	s.serveConn(conn)
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	for {
		frame, err := ReadFrame(conn)
		if err != nil {
			if !isConnErr(err) {
				logging.Op().Warn("wire read failed", "remote", remoteAddr(conn), "error", err)
			}
			return
		}
		var req Envelope
		if err := s.codec.Unmarshal(frame, &req); err != nil {
			logging.Op().Warn("wire decode failed", "remote", remoteAddr(conn), "error", err)
			return
		}

		resp := s.handle(&req)
		data, err := s.codec.Marshal(resp)
		if err != nil {
			logging.Op().Error("wire encode failed", "id", resp.ID, "error", err)
			data, _ = s.codec.Marshal(errorEnvelope(req.ID, err))
		}
		if err := WriteFrame(conn, data); err != nil {
			if !isConnErr(err) {
				logging.Op().Warn("wire write failed", "remote", remoteAddr(conn), "error", err)
			}
			return
		}
	}
}

func (s *Server) handle(req *Envelope) *Envelope {
	switch req.Type {
	case MsgPing:
		return &Envelope{Type: MsgPong, ID: req.ID}
	case MsgCall:
	default:
		return &Envelope{Type: MsgError, ID: req.ID, Error: &ErrorBody{Code: CodeBadRequest, Message: "unexpected " + string(req.Type) + " frame"}}
	}
	if req.Call == nil {
		return &Envelope{Type: MsgError, ID: req.ID, Error: &ErrorBody{Code: CodeBadRequest, Message: "call frame without payload"}}
	}

	if req.Call.ID == "" {
		req.Call.ID = req.ID
	}
	ctx := observability.InjectTraceContext(context.Background(), req.Trace)
	ctx, span := observability.StartServe(ctx, "wire", req.Call)

	reply, err := s.ep.Invoke(ctx, req.Call)
	metrics.RecordServedCall("wire", err)
	if err != nil {
		observability.EndCall(span, 0, err)
		logging.OpForCall(req.ID, req.Call.Handle, req.Call.Method).Debug("served call failed", "error", err)
		return errorEnvelope(req.ID, err)
	}
	if reply == nil {
		reply = &transport.Reply{}
	}
	observability.EndCall(span, int(reply.Status), nil)
	return &Envelope{Type: MsgReply, ID: req.ID, Reply: reply}
}

// Shutdown stops accepting, closes open connections and waits for their
// handlers to return or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	if s.ln != nil {
		s.ln.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func remoteAddr(c net.Conn) string {
	if a := c.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
