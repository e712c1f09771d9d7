package wire

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/oriys/oapi/internal/pkg/vsock"
)

// Address is a parsed endpoint address:
//
//	unix:///run/oapi.sock
//	tcp://127.0.0.1:7400
//	vsock://3:7400
type Address struct {
	Network string // "unix", "tcp" or "vsock"
	Path    string // unix socket path
	Host    string // tcp host:port
	CID     uint32
	Port    uint32
}

// ParseAddress parses s. A bare host:port is taken as tcp.
func ParseAddress(s string) (Address, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		scheme, rest = "tcp", s
	}
	switch scheme {
	case "unix":
		if rest == "" {
			return Address{}, fmt.Errorf("address %q: empty socket path", s)
		}
		return Address{Network: "unix", Path: rest}, nil
	case "tcp":
		if _, _, err := net.SplitHostPort(rest); err != nil {
			return Address{}, fmt.Errorf("address %q: %w", s, err)
		}
		return Address{Network: "tcp", Host: rest}, nil
	case "vsock":
		c, p, ok := strings.Cut(rest, ":")
		if !ok {
			return Address{}, fmt.Errorf("address %q: want vsock://cid:port", s)
		}
		cid, err := strconv.ParseUint(c, 10, 32)
		if err != nil {
			return Address{}, fmt.Errorf("address %q: bad cid: %w", s, err)
		}
		port, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Address{}, fmt.Errorf("address %q: bad port: %w", s, err)
		}
		return Address{Network: "vsock", CID: uint32(cid), Port: uint32(port)}, nil
	}
	return Address{}, fmt.Errorf("address %q: unsupported scheme %q", s, scheme)
}

func (a Address) String() string {
	switch a.Network {
	case "unix":
		return "unix://" + a.Path
	case "vsock":
		return fmt.Sprintf("vsock://%d:%d", a.CID, a.Port)
	}
	return "tcp://" + a.Host
}

// Dial connects to a. A zero timeout leaves the deadline to ctx.
func (a Address) Dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	switch a.Network {
	case "vsock":
		return vsock.Dial(ctx, a.CID, a.Port)
	case "unix":
		var d net.Dialer
		return d.DialContext(ctx, "unix", a.Path)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", a.Host)
}

// Listen opens a listener on a. For vsock the cid is ignored.
func (a Address) Listen() (net.Listener, error) {
	switch a.Network {
	case "vsock":
		return vsock.Listen(a.Port)
	case "unix":
		return net.Listen("unix", a.Path)
	}
	return net.Listen("tcp", a.Host)
}
