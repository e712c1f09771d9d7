package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oriys/oapi/internal/config"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/metrics"
	"github.com/oriys/oapi/internal/observability"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oapi",
		Short:         "OAPI - late-bound bridge to the structural analysis automation API",
		Long:          "Call automation API methods by name against the method catalog, or host a scripted endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Observability.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Observability.LogFormat = logFormat
			}

			logging.InitStructuredTo(cmd.ErrOrStderr(), cfg.Observability.LogFormat, cfg.Observability.LogLevel)
			if cfg.Observability.CallLog != "" {
				if err := logging.Default().SetOutput(cfg.Observability.CallLog); err != nil {
					return fmt.Errorf("open call log: %w", err)
				}
			}

			metrics.InitPrometheus(cfg.Observability.Namespace, nil)

			tc := cfg.Observability.Tracing
			return observability.Init(cmd.Context(), observability.Config{
				Enabled:     tc.Enabled,
				Exporter:    tc.Exporter,
				Endpoint:    tc.Endpoint,
				ServiceName: tc.ServiceName,
				Version:     version,
				SampleRate:  tc.SampleRate,
				APIVersion:  cfg.API.Version,
				Program:     cfg.API.Program,
			})
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			logging.Default().Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return observability.Shutdown(ctx)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("OAPI_CONFIG"), "Path to JSON config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		catalogCmd(),
		callCmd(),
		modelCmd(),
		serveCmd(),
		versionCmd(),
	)
	return root
}
