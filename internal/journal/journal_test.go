package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/oriys/oapi/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	records []*Record
	err     error
	closed  bool
}

func (m *memSink) Name() string { return "mem" }
func (m *memSink) Write(_ context.Context, r *Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}
func (m *memSink) Close() error { m.closed = true; return nil }

func TestFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	sink, err := OpenFile(path)
	require.NoError(t, err)

	rec := &Record{
		ID:       "c1",
		Time:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Handle:   "Sap2000.cPointObj",
		Method:   "GetCoordCartesian",
		Args:     []transport.Value{transport.Str("1"), transport.Zero(transport.KindDouble).AsRef()},
		Status:   0,
		Returned: []transport.Value{{}, transport.Double(12.5).AsRef()},
	}
	require.NoError(t, sink.Write(context.Background(), rec))
	require.NoError(t, sink.Write(context.Background(), &Record{ID: "c2", Handle: "Sap2000.cFile", Method: "Save", Status: 3}))
	require.NoError(t, sink.Close())
	assert.Error(t, sink.Write(context.Background(), rec))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cPointObj", got[0].Component())
	assert.True(t, got[0].Returned[1].Equal(transport.Double(12.5)))
	assert.False(t, got[0].Returned[0].IsValid())
	assert.Equal(t, int32(3), got[1].Status)
}

func TestReadReportsBadLine(t *testing.T) {
	_, err := Read(strings.NewReader("{\"id\":\"a\"}\n\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestRecorderJournalsReplyAndError(t *testing.T) {
	sink := &memSink{}
	calls := 0
	ep := transport.EndpointFunc(func(ctx context.Context, c *transport.Call) (*transport.Reply, error) {
		calls++
		if c.Method == "Down" {
			return nil, transport.ErrComponentUnavailable
		}
		return &transport.Reply{Status: 7}, nil
	})
	rec := NewRecorder(ep, sink)

	reply, err := rec.Invoke(context.Background(), &transport.Call{ID: "x", Handle: "Sap2000.cAreaObj", Method: "Count"})
	require.NoError(t, err)
	assert.Equal(t, int32(7), reply.Status)

	_, err = rec.Invoke(context.Background(), &transport.Call{Handle: "Sap2000.cAreaObj", Method: "Down"})
	assert.ErrorIs(t, err, transport.ErrComponentUnavailable)

	require.Len(t, sink.records, 2)
	assert.Equal(t, "x", sink.records[0].ID)
	assert.Equal(t, int32(7), sink.records[0].Status)
	assert.NotEmpty(t, sink.records[1].ID)
	assert.Contains(t, sink.records[1].Error, "component unavailable")

	require.NoError(t, rec.Close())
	assert.True(t, sink.closed)
}

func TestRecorderIgnoresSinkFailure(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}
	ep := transport.EndpointFunc(func(ctx context.Context, c *transport.Call) (*transport.Reply, error) {
		return &transport.Reply{Status: 0}, nil
	})
	reply, err := NewRecorder(ep, sink).Invoke(context.Background(), &transport.Call{Handle: "h.c", Method: "M"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), reply.Status)
}

func TestRedisSinkIntegration(t *testing.T) {
	addr := os.Getenv("OAPI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("OAPI_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	stream := "oapi:test:" + time.Now().Format("150405.000000")
	sink, err := NewRedisSink(ctx, RedisOptions{Addr: addr, Stream: stream, MaxLen: 100})
	require.NoError(t, err)
	defer sink.Close()
	defer redis.NewClient(&redis.Options{Addr: addr}).Del(ctx, stream)

	require.NoError(t, sink.Write(ctx, &Record{ID: "r1", Handle: "Sap2000.cFile", Method: "Save"}))
	got, err := sink.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestPostgresSinkIntegration(t *testing.T) {
	dsn := os.Getenv("OAPI_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("OAPI_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	sink, err := NewPostgresSink(ctx, dsn)
	require.NoError(t, err)
	defer sink.Close()

	id := "pg-" + time.Now().Format("150405.000000")
	require.NoError(t, sink.Write(ctx, &Record{ID: id, Time: time.Now().UTC(), Handle: "Sap2000.cFile", Method: "Save", Status: 1}))
	got, err := sink.List(ctx, 10)
	require.NoError(t, err)
	found := false
	for _, r := range got {
		if r.ID == id {
			found = true
			assert.Equal(t, int32(1), r.Status)
		}
	}
	assert.True(t, found)

	all, err := sink.ReadAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, id, all[len(all)-1].ID)
}

func TestRemoteSinksAreReaders(t *testing.T) {
	var _ Reader = (*RedisSink)(nil)
	var _ Reader = (*PostgresSink)(nil)
	_, ok := Discard.(Reader)
	assert.False(t, ok)
}
