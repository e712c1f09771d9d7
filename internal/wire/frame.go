// Package wire carries bridge calls over a stream socket.
//
// Every message is one frame: a 4-byte big-endian length followed by the
// encoded Envelope. A connection handles one call at a time; the client
// sends a call frame and reads frames until the reply with the same id
// arrives.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameBytes bounds a single frame payload.
const MaxFrameBytes = 8 * 1024 * 1024

// ErrFrameTooLarge is returned for frames above MaxFrameBytes.
var ErrFrameTooLarge = errors.New("frame too large")

// WriteFrame writes data with its length prefix in a single write.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrameBytes {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(data)))
	copy(buf[4:], data)
	return writeFull(w, buf)
}

// ReadFrame reads one length-prefixed frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return data, nil
}

func writeFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
