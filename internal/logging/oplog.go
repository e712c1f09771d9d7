package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// The operational logger covers connections, servers, the journal and the
// CLI. Individual bridge calls go through the call Logger instead.
var (
	opLogger atomic.Pointer[slog.Logger]
	logLevel = new(slog.LevelVar)
)

func init() {
	opLogger.Store(newOpLogger(os.Stderr, "text", false))
}

func Op() *slog.Logger { return opLogger.Load() }

func SetOp(l *slog.Logger) { opLogger.Store(l) }

func Level() slog.Level { return logLevel.Level() }

// ParseLevel accepts slog level names in any case, "warning", and offsets
// such as "debug-4".
func ParseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// SetLevelFromString sets the operational level. Unknown names are ignored.
func SetLevelFromString(level string) {
	if l, err := ParseLevel(level); err == nil {
		logLevel.Set(l)
	}
}

// InitStructured reconfigures the operational logger on stderr.
// format is "text" (default) or "json".
func InitStructured(format, level string) {
	InitStructuredTo(os.Stderr, format, level)
}

// InitStructuredTo is InitStructured with an explicit destination. At debug
// level records carry their source location.
func InitStructuredTo(w io.Writer, format, level string) {
	SetLevelFromString(level)
	opLogger.Store(newOpLogger(w, format, logLevel.Level() <= slog.LevelDebug))
}

func newOpLogger(w io.Writer, format string, source bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel, AddSource: source}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// OpWithTrace returns the operational logger with trace fields, or the
// plain logger when traceID is empty.
func OpWithTrace(traceID, spanID string) *slog.Logger {
	l := Op()
	switch {
	case traceID == "":
		return l
	case spanID == "":
		return l.With("trace_id", traceID)
	default:
		return l.With("trace_id", traceID, "span_id", spanID)
	}
}

// OpForCall returns the operational logger annotated with call fields.
func OpForCall(callID, handle, method string) *slog.Logger {
	return Op().With("call_id", callID, "handle", handle, "method", method)
}
