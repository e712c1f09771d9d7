package main

import (
	"context"
	"fmt"
	"time"

	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/config"
	"github.com/oriys/oapi/internal/grpc"
	"github.com/oriys/oapi/internal/journal"
	"github.com/oriys/oapi/internal/transport"
	"github.com/oriys/oapi/internal/wire"
)

// loadCatalog returns the builtin catalog for version, with the configured
// catalog file merged over it.
func loadCatalog(c *config.Config, version string) (*catalog.Catalog, error) {
	if version == "" {
		version = c.API.Version
	}
	cat, err := catalog.Builtin(version)
	if err != nil {
		return nil, err
	}
	if c.API.CatalogFile != "" {
		extra, err := catalog.LoadFile(c.API.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", c.API.CatalogFile, err)
		}
		cat.Merge(extra)
	}
	if c.API.Program != "" {
		cat.Program = c.API.Program
	}
	return cat, nil
}

// dialEndpoint builds the configured transport client. The caller opens it.
func dialEndpoint(c *config.Config) (transport.Connection, error) {
	ec := c.Endpoint
	switch ec.Transport {
	case "grpc":
		return grpc.NewClient(ec.Address, ec.DialTimeout.Std())
	case "wire", "":
		codec, err := wire.CodecByName(ec.Codec)
		if err != nil {
			return nil, err
		}
		return wire.NewClient(ec.Address, wire.WithCodec(codec), wire.WithDialTimeout(ec.DialTimeout.Std()))
	default:
		return nil, fmt.Errorf("unknown transport %q", ec.Transport)
	}
}

// connect dials the configured endpoint, wraps it in a journal Recorder
// over the configured sink and opens it.
func connect(ctx context.Context, c *config.Config) (*journal.Recorder, error) {
	conn, err := dialEndpoint(c)
	if err != nil {
		return nil, err
	}
	sink, err := openSink(ctx, c)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	ep := journal.NewRecorder(conn, sink)
	if err := ep.Open(ctx); err != nil {
		ep.Close()
		return nil, err
	}
	return ep, nil
}

// withTimeout bounds ctx by d; d <= 0 leaves it unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// openSink opens the configured journal sink.
func openSink(ctx context.Context, c *config.Config) (journal.Sink, error) {
	jc := c.Journal
	switch jc.Sink {
	case "", "none":
		return journal.Discard, nil
	case "file":
		return journal.OpenFile(jc.Path)
	case "redis":
		return journal.NewRedisSink(ctx, journal.RedisOptions{
			Addr:     jc.Redis.Addr,
			Password: jc.Redis.Password,
			DB:       jc.Redis.DB,
			Stream:   jc.Redis.Stream,
			MaxLen:   jc.Redis.MaxLen,
		})
	case "postgres":
		return journal.NewPostgresSink(ctx, jc.Postgres)
	default:
		return nil, fmt.Errorf("unknown journal sink %q", jc.Sink)
	}
}

// readJournal loads replay records from a JSON-lines file or, for
// "redis" and "postgres", every record held by the configured sink.
func readJournal(ctx context.Context, c *config.Config, source string) ([]journal.Record, error) {
	if source != "redis" && source != "postgres" {
		return journal.ReadFile(source)
	}
	sink, err := openSink(ctx, withSink(c, source))
	if err != nil {
		return nil, err
	}
	defer sink.Close()
	r, ok := sink.(journal.Reader)
	if !ok {
		return nil, fmt.Errorf("journal sink %s cannot be replayed", sink.Name())
	}
	return r.ReadAll(ctx)
}

func withSink(c *config.Config, sink string) *config.Config {
	cp := *c
	cp.Journal.Sink = sink
	return &cp
}
