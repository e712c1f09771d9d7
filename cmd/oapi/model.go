package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oriys/oapi/internal/bridge"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/sapmodel"
	"github.com/spf13/cobra"
)

// modelFlags are shared by every model subcommand.
type modelFlags struct {
	api     string
	timeout time.Duration
}

func modelCmd() *cobra.Command {
	var f modelFlags

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Drive the typed model API through the configured endpoint",
	}
	cmd.PersistentFlags().StringVar(&f.api, "api", "", "API version (v14, v15); defaults to the configured version")
	cmd.PersistentFlags().DurationVarP(&f.timeout, "timeout", "t", 30*time.Second, "Timeout for the whole command (0 = none)")

	cmd.AddCommand(
		modelUnitsCmd(&f),
		modelPointsCmd(&f),
		modelCoordCmd(&f),
		modelPatternsCmd(&f),
		modelOpenCmd(&f),
		modelSaveCmd(&f),
		modelRunCmd(&f),
	)
	return cmd
}

// withModel opens the typed model over the configured endpoint and runs fn.
func withModel(cmd *cobra.Command, f *modelFlags, fn func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error) error {
	cat, err := loadCatalog(cfg, f.api)
	if err != nil {
		return err
	}
	v, err := sapmodel.ParseVersion(cat.Version)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), f.timeout)
	defer cancel()
	ep, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer ep.Close()

	sap := sapmodel.OpenWithCatalog(ep, v, cat, bridge.WithCallLog(logging.Default()))
	return fn(ctx, sap.SapModel(), cmd.OutOrStdout())
}

func modelUnitsCmd(f *modelFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "Print the present units of the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModel(cmd, f, func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error {
				u, err := m.GetPresentUnits(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Units: %s (%d)\n", u, int32(u))
				return nil
			})
		},
	}
}

// printNames prints a GetNameList result.
func printNames(out io.Writer, status int, count *bridge.Cell[int32], names *bridge.Cell[[]string]) {
	fmt.Fprintf(out, "Status: %d\n", status)
	n, _ := count.Get()
	list, _ := names.Get()
	fmt.Fprintf(out, "Count: %d\n", n)
	for _, name := range list {
		fmt.Fprintf(out, "  %s\n", name)
	}
}

func modelPointsCmd(f *modelFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "points",
		Short: "List the point objects of the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModel(cmd, f, func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error {
				count, names := bridge.Want[int32](), bridge.Want[[]string]()
				status, err := m.PointObj().GetNameList(ctx, count, names)
				if err != nil {
					return err
				}
				printNames(out, status, count, names)
				return nil
			})
		},
	}
}

func modelCoordCmd(f *modelFlags) *cobra.Command {
	var csys string
	cmd := &cobra.Command{
		Use:   "coord <point>",
		Short: "Print the cartesian coordinates of a point object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModel(cmd, f, func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error {
				c := sapmodel.Coord{X: bridge.Want[float64](), Y: bridge.Want[float64](), Z: bridge.Want[float64]()}
				var sys bridge.Opt[string]
				if csys != "" {
					sys = bridge.Some(csys)
				}
				status, err := m.PointObj().GetCoordCartesian(ctx, args[0], c, sys)
				if err != nil {
					return err
				}
				printResult(out, status, []output{{"x", c.X}, {"y", c.Y}, {"z", c.Z}})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&csys, "csys", "", "Coordinate system (default Global)")
	return cmd
}

func modelPatternsCmd(f *modelFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the load patterns of the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModel(cmd, f, func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error {
				count, names := bridge.Want[int32](), bridge.Want[[]string]()
				status, err := m.LoadPatterns().GetNameList(ctx, count, names)
				if err != nil {
					return err
				}
				printNames(out, status, count, names)
				return nil
			})
		},
	}
}

func modelOpenCmd(f *modelFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "open <file>",
		Short: "Open a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModel(cmd, f, func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error {
				status, err := m.File().OpenFile(ctx, args[0])
				if err != nil {
					return err
				}
				printResult(out, status, nil)
				return nil
			})
		},
	}
}

func modelSaveCmd(f *modelFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "save [file]",
		Short: "Save the model, to file when given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModel(cmd, f, func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error {
				var name bridge.Opt[string]
				if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
					name = bridge.Some(args[0])
				}
				status, err := m.File().Save(ctx, name)
				if err != nil {
					return err
				}
				printResult(out, status, nil)
				return nil
			})
		},
	}
}

func modelRunCmd(f *modelFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModel(cmd, f, func(ctx context.Context, m *sapmodel.SapModel, out io.Writer) error {
				status, err := m.Analyze().RunAnalysis(ctx)
				if err != nil {
					return err
				}
				printResult(out, status, nil)
				return nil
			})
		},
	}
}
