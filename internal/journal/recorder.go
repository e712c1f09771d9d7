package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/transport"
)

// Recorder is an endpoint decorator that journals every call it forwards.
// Journal failures are logged and never change the call's outcome.
type Recorder struct {
	next transport.Endpoint
	sink Sink
	now  func() time.Time
}

// NewRecorder wraps next so that each call is written to sink.
func NewRecorder(next transport.Endpoint, sink Sink) *Recorder {
	return &Recorder{next: next, sink: sink, now: time.Now}
}

func (r *Recorder) Invoke(ctx context.Context, call *transport.Call) (*transport.Reply, error) {
	start := r.now()
	reply, err := r.next.Invoke(ctx, call)

	rec := &Record{
		ID:         call.ID,
		Time:       start.UTC(),
		Handle:     call.Handle,
		Method:     call.Method,
		Args:       call.Args,
		DurationMs: r.now().Sub(start).Milliseconds(),
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err != nil {
		rec.Error = err.Error()
	} else if reply != nil {
		rec.Status = reply.Status
		rec.Returned = reply.Args
	}

	// Journal writes must not inherit a cancelled call context.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	werr := r.sink.Write(wctx, rec)
	cancel()
	metrics.RecordJournalWrite(r.sink.Name(), werr)
	if werr != nil {
		logging.Op().Warn("journal write failed", "sink", r.sink.Name(), "call_id", rec.ID, "error", werr)
	}
	return reply, err
}

// Open forwards to the wrapped endpoint when it is a Connection.
func (r *Recorder) Open(ctx context.Context) error {
	if c, ok := r.next.(transport.Connection); ok {
		return c.Open(ctx)
	}
	return nil
}

// Close closes the wrapped connection, then the sink.
func (r *Recorder) Close() error {
	var err error
	if c, ok := r.next.(transport.Connection); ok {
		err = c.Close()
	}
	if serr := r.sink.Close(); err == nil {
		err = serr
	}
	return err
}
