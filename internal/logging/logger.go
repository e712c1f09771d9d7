package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// CallLog is one line of the call log: a single bridge call as the caller
// saw it.
type CallLog struct {
	Timestamp  time.Time `json:"timestamp"`
	CallID     string    `json:"call_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	SpanID     string    `json:"span_id,omitempty"`
	Handle     string    `json:"handle"`
	Method     string    `json:"method"`
	Arity      int       `json:"arity"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Filled     int       `json:"filled,omitempty"`
	Phase      string    `json:"phase,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// OK reports whether the call reached the endpoint and returned status 0.
func (c *CallLog) OK() bool {
	return c.Error == "" && c.Status == 0
}

// summary renders c for the console:
//
//	[call] ✓ 5f0c… Sap2000.cPointObj.Count status=0 2ms
func (c *CallLog) summary() string {
	var sb strings.Builder
	mark := "✓"
	if !c.OK() {
		mark = "✗"
	}
	fmt.Fprintf(&sb, "[call] %s %s %s.%s status=%d %dms", mark, c.CallID, c.Handle, c.Method, c.Status, c.DurationMs)
	if c.Filled > 0 {
		fmt.Fprintf(&sb, " [filled:%d]", c.Filled)
	}
	sb.WriteByte('\n')
	if c.Error != "" {
		fmt.Fprintf(&sb, "[call]   %s error: %s\n", c.Phase, c.Error)
	}
	return sb.String()
}

// Logger records bridge calls. Entries go to an optional console writer
// as one-line summaries and to an optional JSON-lines file.
type Logger struct {
	mu      sync.Mutex
	off     bool
	console io.Writer
	file    *os.File
	enc     *json.Encoder
}

var defaultLogger = &Logger{}

// Default returns the process-wide call logger. It has no console writer
// and no file until configured.
func Default() *Logger { return defaultLogger }

// NewLogger returns a call logger printing summaries to console. A nil
// console disables summaries.
func NewLogger(console io.Writer) *Logger {
	return &Logger{console: console}
}

// SetOutput appends JSON lines to the file at path, replacing any file
// set before.
func (l *Logger) SetOutput(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open call log %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeFile()
	l.file = f
	l.enc = json.NewEncoder(f)
	return nil
}

// SetConsole sets the summary writer; nil turns summaries off.
func (l *Logger) SetConsole(w io.Writer) {
	l.mu.Lock()
	l.console = w
	l.mu.Unlock()
}

// SetEnabled turns the logger on or off without dropping its outputs.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	l.off = !enabled
	l.mu.Unlock()
}

// Log records entry, stamping it if the caller did not.
func (l *Logger) Log(entry *CallLog) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.off {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if l.console != nil {
		io.WriteString(l.console, entry.summary())
	}
	if l.enc != nil {
		if err := l.enc.Encode(entry); err != nil {
			Op().Warn("call log write failed", "call_id", entry.CallID, "error", err)
		}
	}
}

// Close releases the log file. The console writer stays attached.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeFile()
}

func (l *Logger) closeFile() {
	if l.file != nil {
		l.file.Close()
	}
	l.file = nil
	l.enc = nil
}
