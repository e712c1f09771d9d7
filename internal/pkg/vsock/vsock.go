package vsock

import (
	"context"
	"net"

	"github.com/mdlayher/vsock"
)

// Host is the context id of the hypervisor host.
const Host = vsock.Host

// Dial connects to port on the VM (or host) with the given context id.
// The underlying dial does not take a context, so cancellation abandons the
// attempt and closes the connection when it eventually completes.
func Dial(ctx context.Context, cid, port uint32) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		c, err := vsock.Dial(cid, port, nil)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{conn: c}
	}()

	select {
	case r := <-done:
		return r.conn, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// Listen creates a vsock listener on port for any local context id.
func Listen(port uint32) (net.Listener, error) {
	return vsock.Listen(port, nil)
}
