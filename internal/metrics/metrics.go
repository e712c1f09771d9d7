package metrics

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Call outcomes.
const (
	OutcomeOK     = "ok"     // status 0
	OutcomeStatus = "status" // nonzero status, no error
	OutcomeError  = "error"  // connectivity or contract error
)

// tally counts calls by outcome and tracks their latency. The zero value
// is not ready; use newTally.
type tally struct {
	calls     atomic.Int64
	ok        atomic.Int64
	status    atomic.Int64
	failed    atomic.Int64
	totalMs   atomic.Int64
	minMs     atomic.Int64
	maxMs     atomic.Int64
	lastState atomic.Int64
}

func newTally() *tally {
	t := &tally{}
	t.minMs.Store(math.MaxInt64)
	return t
}

func (t *tally) add(outcome string, status int, durationMs int64) {
	t.calls.Add(1)
	switch outcome {
	case OutcomeOK:
		t.ok.Add(1)
	case OutcomeStatus:
		t.status.Add(1)
	default:
		t.failed.Add(1)
	}
	if outcome != OutcomeError {
		t.lastState.Store(int64(status))
	}
	t.totalMs.Add(durationMs)
	casMin(&t.minMs, durationMs)
	casMax(&t.maxMs, durationMs)
}

func (t *tally) avg() float64 {
	n := t.calls.Load()
	if n == 0 {
		return 0
	}
	return float64(t.totalMs.Load()) / float64(n)
}

// min is 0 until the first call.
func (t *tally) min() int64 {
	if v := t.minMs.Load(); v != math.MaxInt64 {
		return v
	}
	return 0
}

// Metrics collects in-process call statistics. Every recorded call is also
// forwarded to the Prometheus collectors.
type Metrics struct {
	all         *tally
	cellsFilled atomic.Int64
	methods     sync.Map // "component.method" -> *tally
	startTime   time.Time
}

var global = newMetrics()

func newMetrics() *Metrics {
	return &Metrics{all: newTally(), startTime: time.Now()}
}

// Global returns the process-wide collector.
func Global() *Metrics { return global }

// StartTime returns when the process-wide collector was created.
func StartTime() time.Time { return global.startTime }

// RecordCall records one bridge call. status is ignored when outcome is
// OutcomeError.
func (m *Metrics) RecordCall(component, method, outcome string, status, filled int, durationMs int64) {
	m.all.add(outcome, status, durationMs)
	m.cellsFilled.Add(int64(filled))
	m.method(component+"."+method).add(outcome, status, durationMs)

	RecordPrometheusCall(component, method, outcome, float64(durationMs))
}

func (m *Metrics) method(key string) *tally {
	if v, ok := m.methods.Load(key); ok {
		return v.(*tally)
	}
	v, _ := m.methods.LoadOrStore(key, newTally())
	return v.(*tally)
}

// Totals is the aggregate view over every recorded call.
type Totals struct {
	Calls       int64   `json:"total"`
	OK          int64   `json:"ok"`
	Status      int64   `json:"status"`
	Failed      int64   `json:"failed"`
	CellsFilled int64   `json:"cells_filled"`
	AvgMs       float64 `json:"-"`
	MinMs       int64   `json:"-"`
	MaxMs       int64   `json:"-"`
}

// Totals returns the aggregate counters.
func (m *Metrics) Totals() Totals {
	return Totals{
		Calls:       m.all.calls.Load(),
		OK:          m.all.ok.Load(),
		Status:      m.all.status.Load(),
		Failed:      m.all.failed.Load(),
		CellsFilled: m.cellsFilled.Load(),
		AvgMs:       m.all.avg(),
		MinMs:       m.all.min(),
		MaxMs:       m.all.maxMs.Load(),
	}
}

// MethodStat is the per-method view returned by MethodStats.
type MethodStat struct {
	Method     string  `json:"method"`
	Calls      int64   `json:"calls"`
	OK         int64   `json:"ok"`
	Status     int64   `json:"status"`
	Failures   int64   `json:"failures"`
	LastStatus int64   `json:"last_status"`
	AvgMs      float64 `json:"avg_ms"`
	MinMs      int64   `json:"min_ms"`
	MaxMs      int64   `json:"max_ms"`
}

// MethodStats returns per-method statistics sorted by "component.method".
func (m *Metrics) MethodStats() []MethodStat {
	var out []MethodStat
	m.methods.Range(func(key, value any) bool {
		t := value.(*tally)
		out = append(out, MethodStat{
			Method:     key.(string),
			Calls:      t.calls.Load(),
			OK:         t.ok.Load(),
			Status:     t.status.Load(),
			Failures:   t.failed.Load(),
			LastStatus: t.lastState.Load(),
			AvgMs:      t.avg(),
			MinMs:      t.min(),
			MaxMs:      t.maxMs.Load(),
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}

// JSONHandler serves the totals and per-method statistics as JSON.
func (m *Metrics) JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := m.Totals()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
			"calls":          t,
			"latency_ms": map[string]any{
				"avg": t.AvgMs,
				"min": t.MinMs,
				"max": t.MaxMs,
			},
			"methods": m.MethodStats(),
		})
	})
}

func casMin(target *atomic.Int64, v int64) {
	for old := target.Load(); v < old; old = target.Load() {
		if target.CompareAndSwap(old, v) {
			return
		}
	}
}

func casMax(target *atomic.Int64, v int64) {
	for old := target.Load(); v > old; old = target.Load() {
		if target.CompareAndSwap(old, v) {
			return
		}
	}
}
