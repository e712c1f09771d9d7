// Package journal records every call that crosses an endpoint, for audit
// and for replaying a session against the stub endpoint.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oriys/oapi/internal/transport"
)

// Record is one journaled call.
type Record struct {
	ID         string            `json:"id"`
	Time       time.Time         `json:"time"`
	Handle     string            `json:"handle"`
	Method     string            `json:"method"`
	Args       []transport.Value `json:"args"`
	Status     int32             `json:"status"`
	Returned   []transport.Value `json:"returned,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

// Component returns the handle suffix of the journaled call.
func (r *Record) Component() string {
	return transport.Suffix(r.Handle)
}

// Sink stores records.
type Sink interface {
	Name() string
	Write(ctx context.Context, r *Record) error
	Close() error
}

// Reader is a Sink that can return its whole journal, oldest first, for
// replay.
type Reader interface {
	Sink
	ReadAll(ctx context.Context) ([]Record, error)
}

// Discard drops every record.
var Discard Sink = discard{}

type discard struct{}

func (discard) Name() string                         { return "none" }
func (discard) Write(context.Context, *Record) error { return nil }
func (discard) Close() error                         { return nil }

// Read decodes a JSON-lines journal. Blank lines are skipped.
func Read(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// ReadFile loads a JSON-lines journal from path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	return Read(f)
}
