package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS call_journal (
	id          TEXT PRIMARY KEY,
	called_at   TIMESTAMPTZ NOT NULL,
	handle      TEXT NOT NULL,
	method      TEXT NOT NULL,
	status      INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL,
	data        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_call_journal_method ON call_journal (handle, method);
CREATE INDEX IF NOT EXISTS idx_call_journal_called_at ON call_journal (called_at);
`

// Default and maximum row count for List.
const (
	defaultListLimit = 100
	maxListLimit     = 10000
)

// PostgresSink keeps records in the call_journal table. The full record is
// stored as JSONB; the other columns exist for querying.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to dsn and creates the table if needed.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure call_journal schema: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

func (s *PostgresSink) Name() string { return "postgres" }

// Write inserts r. A record already journaled under the same ID is kept.
func (s *PostgresSink) Write(ctx context.Context, r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", r.ID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO call_journal (id, called_at, handle, method, status, error, duration_ms, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		r.ID, r.Time, r.Handle, r.Method, r.Status, r.Error, r.DurationMs, data)
	return err
}

// List returns up to limit of the most recent records in call order.
func (s *PostgresSink) List(ctx context.Context, limit int) ([]Record, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	recs, err := s.query(ctx, `SELECT data FROM call_journal ORDER BY called_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	// newest first from the query
	slices.Reverse(recs)
	return recs, nil
}

// ReadAll returns every record in the table, oldest first.
func (s *PostgresSink) ReadAll(ctx context.Context) ([]Record, error) {
	return s.query(ctx, `SELECT data FROM call_journal ORDER BY called_at, id`)
}

func (s *PostgresSink) query(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query call_journal: %w", err)
	}
	blobs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan call_journal: %w", err)
	}
	out := make([]Record, len(blobs))
	for i, data := range blobs {
		if err := json.Unmarshal(data, &out[i]); err != nil {
			return nil, fmt.Errorf("decode journal row: %w", err)
		}
	}
	return out, nil
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
