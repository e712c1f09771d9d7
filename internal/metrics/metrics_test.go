package metrics

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCallAggregates(t *testing.T) {
	m := newMetrics()
	m.RecordCall("cAreaObj", "AddByCoord", OutcomeOK, 0, 1, 4)
	m.RecordCall("cAreaObj", "AddByCoord", OutcomeStatus, 7, 0, 10)
	m.RecordCall("cPointObj", "GetRestraint", OutcomeError, 0, 0, 2)

	totals := m.Totals()
	assert.Equal(t, int64(3), totals.Calls)
	assert.Equal(t, int64(1), totals.OK)
	assert.Equal(t, int64(1), totals.Status)
	assert.Equal(t, int64(1), totals.Failed)
	assert.Equal(t, int64(1), totals.CellsFilled)
	assert.Equal(t, int64(2), totals.MinMs)
	assert.Equal(t, int64(10), totals.MaxMs)

	stats := m.MethodStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "cAreaObj.AddByCoord", stats[0].Method)
	assert.Equal(t, int64(2), stats[0].Calls)
	assert.Equal(t, int64(7), stats[0].LastStatus)
	assert.Equal(t, 7.0, stats[0].AvgMs)
	assert.Equal(t, int64(4), stats[0].MinMs)
	assert.Equal(t, int64(0), stats[1].LastStatus)
}

func TestEmptyTotals(t *testing.T) {
	totals := newMetrics().Totals()
	assert.Zero(t, totals.MinMs)
	assert.Zero(t, totals.AvgMs)
}

func TestJSONHandler(t *testing.T) {
	m := newMetrics()
	m.RecordCall("cFile", "Save", OutcomeOK, 0, 0, 1)

	rec := httptest.NewRecorder()
	m.JSONHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))
	require.Equal(t, 200, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	calls := body["calls"].(map[string]any)
	assert.Equal(t, 1.0, calls["total"])
	assert.Len(t, body["methods"], 1)
}

func TestPrometheusHelpersBeforeInit(t *testing.T) {
	// Record* helpers are no-ops until InitPrometheus is called.
	RecordContractError("arity")
	RecordFrameLatency("send", 1)
	IncConnections()
	DecConnections()

	rec := httptest.NewRecorder()
	PrometheusHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if promMetrics == nil {
		assert.Equal(t, 503, rec.Code)
	}
}

func TestPrometheusScrape(t *testing.T) {
	InitPrometheus("oapi_scrape", nil)
	t.Cleanup(func() { promMetrics = nil })

	RecordPrometheusCall("cPointObj", "Count", OutcomeStatus, 3)
	RecordContractError("arity")
	RecordJournalWrite("file", nil)
	RecordServedCall("wire", errors.New("closed"))
	IncConnections()

	rec := httptest.NewRecorder()
	PrometheusHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	for _, want := range []string{
		`oapi_scrape_calls_total{component="cPointObj",method="Count",outcome="status"} 1`,
		`oapi_scrape_contract_errors_total{kind="arity"} 1`,
		`oapi_scrape_journal_writes_total{result="ok",sink="file"} 1`,
		`oapi_scrape_served_calls_total{result="error",transport="wire"} 1`,
		`oapi_scrape_endpoint_connections 1`,
	} {
		assert.True(t, strings.Contains(body, want), want)
	}
}
