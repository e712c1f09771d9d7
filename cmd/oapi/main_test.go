package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/journal"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/stub"
	"github.com/oriys/oapi/internal/transport"
	"github.com/oriys/oapi/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OAPI_CONFIG", "")
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// serveStub hosts ep over the wire protocol and points the CLI at it.
func serveStub(t *testing.T, ep *stub.Endpoint) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := wire.NewServer(ep, nil)
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	t.Setenv("OAPI_ENDPOINT", "tcp://"+ln.Addr().String())
	t.Setenv("OAPI_TRANSPORT", "wire")
	t.Setenv("OAPI_JOURNAL", "none")
}

func v14(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Builtin("v14")
	require.NoError(t, err)
	return cat
}

func TestParseCallArgs(t *testing.T) {
	m, err := v14(t).Lookup("cPointObj", "GetCoordCartesian")
	require.NoError(t, err)

	args, outputs, err := parseCallArgs(m, []string{"1", "?", "_"})
	require.NoError(t, err)
	require.Len(t, args, 4)
	assert.Nil(t, args[0].Cell())
	assert.False(t, args[1].Cell().IsUnused())
	assert.True(t, args[2].Cell().IsUnused())
	assert.False(t, args[3].Cell().IsUnused())

	require.Len(t, outputs, 2)
	assert.Equal(t, "x", outputs[0].name)
	assert.Equal(t, "z", outputs[1].name)
}

func TestParseCallArgsOptionalInputs(t *testing.T) {
	m, err := v14(t).Lookup("cPointObj", "AddCartesian")
	require.NoError(t, err)

	args, outputs, err := parseCallArgs(m, []string{"1", "2.5", "-3", "?", "_", "Local"})
	require.NoError(t, err)
	require.Len(t, args, 6)
	assert.True(t, args[4].IsDefault())
	require.Len(t, outputs, 1)
	assert.Equal(t, "name", outputs[0].name)
}

func TestParseCallArgsInOutSeed(t *testing.T) {
	m, err := v14(t).Lookup("cPointObj", "SetRestraint")
	require.NoError(t, err)

	args, outputs, err := parseCallArgs(m, []string{"1", "true,true,true,false,false,false"})
	require.NoError(t, err)
	require.Len(t, args, 2)
	require.NotNil(t, args[1].Cell())
	assert.Equal(t, transport.KindBoolArray, args[1].Cell().Kind())
	require.Len(t, outputs, 1)
	assert.Equal(t, "<pending>", outputs[0].cell.String())
}

func TestParseCallArgsErrors(t *testing.T) {
	cat := v14(t)
	coord, err := cat.Lookup("cPointObj", "GetCoordCartesian")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
	}{
		{"want on input", []string{"?"}},
		{"value on output", []string{"1", "2"}},
		{"too many", []string{"1", "?", "?", "?", "Global", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseCallArgs(coord, tt.args)
			assert.Error(t, err)
		})
	}

	add, err := cat.Lookup("cPointObj", "AddCartesian")
	require.NoError(t, err)
	_, _, err = parseCallArgs(add, []string{"one", "2", "3"})
	assert.Error(t, err)
}

func TestCatalogShow(t *testing.T) {
	out, err := run(t, "catalog", "show", "cPointObj", "GetCoordCartesian")
	require.NoError(t, err)
	assert.Contains(t, out, "cPointObj.GetCoordCartesian (v14)")
	assert.Contains(t, out, "cSys")
	assert.Contains(t, out, "Global")
}

func TestCatalogList(t *testing.T) {
	out, err := run(t, "catalog", "list", "--api", "v15", "cAutoSeismic")
	require.NoError(t, err)
	assert.Contains(t, out, "GetEurocode82004_1")
	assert.Contains(t, out, "deprecated")

	_, err = run(t, "catalog", "list", "cNothing")
	assert.Error(t, err)
}

func TestCallPrintsOutputs(t *testing.T) {
	ep := stub.New(stub.WithCatalog(v14(t)))
	ep.Respond("cPointObj", "GetCoordCartesian", 0, map[int]transport.Value{
		1: transport.Double(10), 2: transport.Double(20), 3: transport.Double(30),
	})
	serveStub(t, ep)

	out, err := run(t, "call", "cPointObj", "GetCoordCartesian", "1", "?", "_")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: 0")
	assert.Contains(t, out, "x = 10")
	assert.Contains(t, out, "z = 30")
	assert.NotContains(t, out, "y =")

	last, ok := ep.LastCall()
	require.True(t, ok)
	assert.Equal(t, "Sap2000.cPointObj", last.Handle)
	require.Len(t, last.Args, 5)
	assert.True(t, last.Args[4].Equal(transport.Str("Global")))
}

func TestCallNonzeroStatusIsNotAnError(t *testing.T) {
	ep := stub.New(stub.WithCatalog(v14(t)))
	ep.Respond("cAnalyze", "RunAnalysis", 1, nil)
	serveStub(t, ep)

	out, err := run(t, "call", "cAnalyze", "RunAnalysis")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: 1")
}

func TestCallVerboseSummary(t *testing.T) {
	ep := stub.New(stub.WithCatalog(v14(t)))
	ep.Respond("cAnalyze", "RunAnalysis", 1, nil)
	serveStub(t, ep)
	t.Setenv("OAPI_CONFIG", "")

	root := rootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"call", "-v", "cAnalyze", "RunAnalysis"})
	require.NoError(t, root.Execute())

	assert.Contains(t, errOut.String(), "[call] ✗")
	assert.Contains(t, errOut.String(), "Sap2000.cAnalyze.RunAnalysis status=1")
}

func TestModelCommands(t *testing.T) {
	ep := stub.New(stub.WithCatalog(v14(t)))
	ep.Respond("cPointObj", "GetNameList", 0, map[int]transport.Value{
		0: transport.Int(2),
		1: transport.Strs([]string{"1", "2"}),
	})
	ep.Respond("cPointObj", "GetCoordCartesian", 0, map[int]transport.Value{
		1: transport.Double(1.5), 2: transport.Double(-2), 3: transport.Double(0),
	})
	ep.Respond("cSapModel", "GetPresentUnits", 6, nil)
	ep.Respond("cAnalyze", "RunAnalysis", 1, nil)
	serveStub(t, ep)

	out, err := run(t, "model", "points")
	require.NoError(t, err)
	assert.Contains(t, out, "Count: 2")
	assert.Contains(t, out, "  2\n")

	out, err = run(t, "model", "coord", "1", "--csys", "Local")
	require.NoError(t, err)
	assert.Contains(t, out, "x = 1.5")
	assert.Contains(t, out, "y = -2")
	last, ok := ep.LastCall()
	require.True(t, ok)
	require.Len(t, last.Args, 5)
	assert.True(t, last.Args[4].Equal(transport.Str("Local")))

	out, err = run(t, "model", "units")
	require.NoError(t, err)
	assert.Contains(t, out, "Units: kN_m_C (6)")

	out, err = run(t, "model", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: 1")

	_, err = run(t, "model", "save", "/tmp/frame.sdb")
	require.NoError(t, err)
	last, _ = ep.LastCall()
	assert.Equal(t, "Save", last.Method)
	assert.True(t, last.Args[0].Equal(transport.Str("/tmp/frame.sdb")))
}

func TestModelUnknownAPIVersion(t *testing.T) {
	t.Setenv("OAPI_ENDPOINT", "tcp://127.0.0.1:1")
	_, err := run(t, "model", "--api", "v99", "units")
	assert.Error(t, err)
}

func TestCallUnknownMethodNeverDials(t *testing.T) {
	t.Setenv("OAPI_ENDPOINT", "tcp://127.0.0.1:1")
	_, err := run(t, "call", "cPointObj", "Teleport")
	assert.ErrorIs(t, err, transport.ErrUnknownMethod)
}

func TestCallJournalsToFile(t *testing.T) {
	ep := stub.New(stub.WithCatalog(v14(t)))
	serveStub(t, ep)
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	t.Setenv("OAPI_JOURNAL", "file")
	t.Setenv("OAPI_JOURNAL_PATH", path)

	_, err := run(t, "call", "cPointObj", "Count")
	require.NoError(t, err)

	records, err := journal.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Count", records[0].Method)
	assert.Equal(t, "cPointObj", records[0].Component())
}

func TestBuildStubReplaysJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	sink, err := journal.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), &journal.Record{
		Handle:   "Sap2000.cSapModel",
		Method:   "GetPresentUnits",
		Status:   6,
		Returned: []transport.Value{},
	}))
	require.NoError(t, sink.Close())

	ep, err := buildStub(context.Background(), v14(t), "", path)
	require.NoError(t, err)

	reply, err := ep.Invoke(context.Background(), &transport.Call{Handle: "Sap2000.cSapModel", Method: "GetPresentUnits"})
	require.NoError(t, err)
	assert.Equal(t, int32(6), reply.Status)
}

func TestMetricsMux(t *testing.T) {
	metrics.InitPrometheus("oapi_test", nil)
	h := metricsMux()

	for _, path := range []string{"/healthz", "/metrics", "/stats"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "oapi dev")
	assert.Contains(t, out, "v14, v15")
}
