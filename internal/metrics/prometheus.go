package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics holds the collectors exported on /metrics.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	calls          *prometheus.CounterVec   // component, method, outcome
	contractErrors *prometheus.CounterVec   // kind
	journalWrites  *prometheus.CounterVec   // sink, result
	servedCalls    *prometheus.CounterVec   // transport, result
	callDuration   *prometheus.HistogramVec // component, method
	frameLatency   *prometheus.HistogramVec // operation
	connections    prometheus.Gauge
}

// Call duration buckets in milliseconds. Analysis runs dominate the tail.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

var frameBuckets = []float64{0.5, 1, 2, 5, 10, 25, 50, 100}

var promMetrics *PrometheusMetrics

// InitPrometheus builds a fresh registry under namespace and makes it the
// target of the Record helpers. Nil buckets select the defaults.
func InitPrometheus(namespace string, buckets []float64) {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, b []float64, labels ...string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: b}, labels)
	}

	pm := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),

		calls:          counter("calls_total", "Bridge calls by outcome (ok, status, error)", "component", "method", "outcome"),
		contractErrors: counter("contract_errors_total", "Calls rejected by the bridge contract, by error kind", "kind"),
		journalWrites:  counter("journal_writes_total", "Call journal writes by sink and result", "sink", "result"),
		servedCalls:    counter("served_calls_total", "Calls handled by a hosted endpoint, by transport", "transport", "result"),

		callDuration: histogram("call_duration_milliseconds", "Bridge call duration in milliseconds", buckets, "component", "method"),
		frameLatency: histogram("frame_latency_milliseconds", "Transport frame latency in milliseconds", frameBuckets, "operation"),

		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "endpoint_connections",
			Help:      "Open endpoint connections",
		}),
	}

	pm.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		pm.calls,
		pm.contractErrors,
		pm.journalWrites,
		pm.servedCalls,
		pm.callDuration,
		pm.frameLatency,
		pm.connections,
	)

	promMetrics = pm
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordPrometheusCall counts one bridge call and observes its duration.
func RecordPrometheusCall(component, method, outcome string, durationMs float64) {
	if pm := promMetrics; pm != nil {
		pm.calls.WithLabelValues(component, method, outcome).Inc()
		pm.callDuration.WithLabelValues(component, method).Observe(durationMs)
	}
}

// RecordContractError counts a contract violation by kind
// (arity, type, direction, unknown_method, malformed_reply, invalid_state).
func RecordContractError(kind string) {
	if pm := promMetrics; pm != nil {
		pm.contractErrors.WithLabelValues(kind).Inc()
	}
}

// RecordJournalWrite counts one journal write.
func RecordJournalWrite(sink string, err error) {
	if pm := promMetrics; pm != nil {
		pm.journalWrites.WithLabelValues(sink, resultLabel(err)).Inc()
	}
}

// RecordServedCall counts a call handled by a hosted endpoint.
func RecordServedCall(transport string, err error) {
	if pm := promMetrics; pm != nil {
		pm.servedCalls.WithLabelValues(transport, resultLabel(err)).Inc()
	}
}

// RecordFrameLatency observes one transport operation (connect, send,
// receive, grpc_call).
func RecordFrameLatency(operation string, durationMs float64) {
	if pm := promMetrics; pm != nil {
		pm.frameLatency.WithLabelValues(operation).Observe(durationMs)
	}
}

func IncConnections() {
	if pm := promMetrics; pm != nil {
		pm.connections.Inc()
	}
}

func DecConnections() {
	if pm := promMetrics; pm != nil {
		pm.connections.Dec()
	}
}

// PrometheusHandler serves the registry in the Prometheus text format, or
// 503 before InitPrometheus.
func PrometheusHandler() http.Handler {
	pm := promMetrics
	if pm == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "prometheus metrics not initialized", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}
