package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/grpc"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/observability"
	"github.com/oriys/oapi/internal/stub"
	"github.com/oriys/oapi/internal/transport"
	"github.com/oriys/oapi/internal/wire"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		listenAddr  string
		transportID string
		codecName   string
		api         string
		scriptPath  string
		replay      string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host a scripted endpoint",
		Long: `Host a stub automation endpoint over the wire protocol or gRPC.
Answers come from a YAML script (--script) or a recorded journal
(--replay: a JSON-lines file, "redis" or "postgres"). Without either,
every catalog method answers status 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptPath != "" && replay != "" {
				return fmt.Errorf("--script and --replay are mutually exclusive")
			}
			if !cmd.Flags().Changed("listen") {
				listenAddr = cfg.Endpoint.Address
			}
			if !cmd.Flags().Changed("transport") {
				transportID = cfg.Endpoint.Transport
			}
			if !cmd.Flags().Changed("codec") {
				codecName = cfg.Endpoint.Codec
			}
			if !cmd.Flags().Changed("metrics") {
				metricsAddr = cfg.Observability.MetricsAddr
			}

			cat, err := loadCatalog(cfg, api)
			if err != nil {
				return err
			}
			ep, err := buildStub(cmd.Context(), cat, scriptPath, replay)
			if err != nil {
				return err
			}

			addr, err := wire.ParseAddress(listenAddr)
			if err != nil {
				return err
			}
			ln, err := addr.Listen()
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			srv, err := newEndpointServer(transportID, codecName, ep)
			if err != nil {
				ln.Close()
				return err
			}

			errCh := make(chan error, 2)
			go func() {
				logging.Op().Info("stub endpoint started",
					"addr", addr.String(), "transport", transportID, "api", cat.Version, "program", cat.Program)
				if err := srv.serve(ln); err != nil {
					errCh <- err
				}
			}()

			var httpServer *http.Server
			if metricsAddr != "" {
				httpServer = startMetricsServer(metricsAddr, errCh)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				logging.Op().Info("shutdown signal received", "signal", sig.String())
			case err := <-errCh:
				return fmt.Errorf("stub endpoint error: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if httpServer != nil {
				if err := httpServer.Shutdown(ctx); err != nil {
					logging.Op().Warn("metrics server shutdown failed", "error", err)
				}
			}
			if err := srv.shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown stub endpoint: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "tcp://127.0.0.1:7400", "Listen address (unix://, tcp://, vsock://); defaults to endpoint.address")
	cmd.Flags().StringVar(&transportID, "transport", "wire", "Transport (wire, grpc); defaults to endpoint.transport")
	cmd.Flags().StringVar(&codecName, "codec", "json", "Wire codec (json, proto)")
	cmd.Flags().StringVar(&api, "api", "", "API version (v14, v15); defaults to the configured version")
	cmd.Flags().StringVar(&scriptPath, "script", "", "YAML script of canned answers")
	cmd.Flags().StringVar(&replay, "replay", "", "Journal to replay (file path, redis, postgres)")
	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "Metrics HTTP address (e.g., :9464)")

	return cmd
}

func buildStub(ctx context.Context, cat *catalog.Catalog, scriptPath, replay string) (*stub.Endpoint, error) {
	switch {
	case replay != "":
		records, err := readJournal(ctx, cfg, replay)
		if err != nil {
			return nil, fmt.Errorf("read journal: %w", err)
		}
		logging.Op().Info("replaying journal", "source", replay, "records", len(records))
		return stub.FromJournal(records, stub.WithCatalog(cat)), nil
	case scriptPath != "":
		script, err := stub.LoadScriptFile(scriptPath, cat)
		if err != nil {
			return nil, err
		}
		ep := stub.New(stub.WithCatalog(cat))
		if err := script.Apply(ep, cat); err != nil {
			return nil, err
		}
		return ep, nil
	default:
		return stub.New(stub.WithCatalog(cat)), nil
	}
}

// endpointServer hosts an endpoint on one transport.
type endpointServer struct {
	serve    func(net.Listener) error
	shutdown func(context.Context) error
}

func newEndpointServer(transportID, codecName string, ep transport.Endpoint) (*endpointServer, error) {
	switch transportID {
	case "grpc":
		s := grpc.NewServer(ep)
		return &endpointServer{
			serve: s.Serve,
			shutdown: func(ctx context.Context) error {
				done := make(chan struct{})
				go func() {
					s.GracefulStop()
					close(done)
				}()
				select {
				case <-done:
					return nil
				case <-ctx.Done():
					s.Stop()
					return ctx.Err()
				}
			},
		}, nil
	case "wire", "":
		codec, err := wire.CodecByName(codecName)
		if err != nil {
			return nil, err
		}
		s := wire.NewServer(ep, codec)
		return &endpointServer{serve: s.Serve, shutdown: s.Shutdown}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transportID)
	}
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.PrometheusHandler())
	mux.Handle("GET /stats", metrics.Global().JSONHandler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(metrics.StartTime()).Seconds()),
		})
	})
	return observability.HTTPMiddleware(mux)
}

func startMetricsServer(addr string, errCh chan<- error) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Op().Info("metrics server started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	return server
}
