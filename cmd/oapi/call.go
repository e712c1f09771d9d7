package main

import (
	"fmt"
	"io"
	"time"

	"github.com/oriys/oapi/internal/bridge"
	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/logging"
	"github.com/oriys/oapi/internal/transport"
	"github.com/spf13/cobra"
)

const (
	argWant    = "?"
	argDecline = "_"
)

func callCmd() *cobra.Command {
	var (
		api     string
		timeout time.Duration
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "call <component> <method> [args...]",
		Short: "Call a method by name",
		Long: `Call a method by name. Arguments are positional and parsed by the
catalog kind of each parameter; arrays are comma separated.

  ?   receive an output parameter
  _   decline an output, or send the default of an optional input

Output parameters left off the end of the list are received.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cfg, api)
			if err != nil {
				return err
			}
			m, err := cat.Lookup(args[0], args[1])
			if err != nil {
				return err
			}
			callArgs, outputs, err := parseCallArgs(m, args[2:])
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd.Context(), timeout)
			defer cancel()
			ep, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer ep.Close()

			if verbose {
				logging.Default().SetConsole(cmd.ErrOrStderr())
				defer logging.Default().SetConsole(nil)
			}
			b := bridge.New(ep, cat, bridge.WithCallLog(logging.Default()))
			status, err := b.Call(ctx, b.Handle(m.Component), m.Name, callArgs...)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), status, outputs)
			return nil
		},
	}

	cmd.Flags().StringVar(&api, "api", "", "API version (v14, v15); defaults to the configured version")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Call timeout (0 = none)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a call summary to stderr")
	return cmd
}

// output is a cell the CLI prints after the call.
type output struct {
	name string
	cell fmt.Stringer
}

// parseCallArgs turns command-line tokens into bridge arguments for m.
func parseCallArgs(m *catalog.Method, raw []string) ([]bridge.Arg, []output, error) {
	if len(raw) > m.Arity() {
		return nil, nil, fmt.Errorf("%s takes %d arguments, got %d", m, m.Arity(), len(raw))
	}

	var (
		args    []bridge.Arg
		outputs []output
	)
	for i, p := range m.Params {
		tok := argWant
		switch {
		case i < len(raw):
			tok = raw[i]
		case p.Dir != transport.Out:
			return args, outputs, nil
		}

		switch {
		case tok == argDecline && p.Dir == transport.Out:
			arg, _, err := newCell(p.Kind, false)
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)

		case tok == argDecline:
			args = append(args, bridge.Default())

		case tok == argWant:
			if p.Dir == transport.In {
				return nil, nil, fmt.Errorf("%s: %s is an input parameter", m, p.Name)
			}
			arg, cell, err := newCell(p.Kind, true)
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)
			outputs = append(outputs, output{name: p.Name, cell: cell})

		default:
			if p.Dir == transport.Out {
				return nil, nil, fmt.Errorf("%s: %s is an output parameter; use %s or %s", m, p.Name, argWant, argDecline)
			}
			v, err := transport.ParseText(p.Kind, tok)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %s: %w", m, p.Name, err)
			}
			if p.Dir == transport.In {
				args = append(args, bridge.Value(v))
				continue
			}
			arg, cell, err := seedCell(v)
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)
			outputs = append(outputs, output{name: p.Name, cell: cell})
		}
	}
	return args, outputs, nil
}

func newCell(k transport.Kind, want bool) (bridge.Arg, fmt.Stringer, error) {
	switch k {
	case transport.KindInt:
		return cellOf(bridge.NewCell[int32](want))
	case transport.KindDouble:
		return cellOf(bridge.NewCell[float64](want))
	case transport.KindBool:
		return cellOf(bridge.NewCell[bool](want))
	case transport.KindString:
		return cellOf(bridge.NewCell[string](want))
	case transport.KindIntArray:
		return cellOf(bridge.NewCell[[]int32](want))
	case transport.KindDoubleArray:
		return cellOf(bridge.NewCell[[]float64](want))
	case transport.KindBoolArray:
		return cellOf(bridge.NewCell[[]bool](want))
	case transport.KindStringArray:
		return cellOf(bridge.NewCell[[]string](want))
	}
	return bridge.Arg{}, nil, fmt.Errorf("no cell for kind %s", k)
}

func seedCell(v transport.Value) (bridge.Arg, fmt.Stringer, error) {
	switch x := v.Interface().(type) {
	case int32:
		return cellOf(bridge.Seed(x))
	case float64:
		return cellOf(bridge.Seed(x))
	case bool:
		return cellOf(bridge.Seed(x))
	case string:
		return cellOf(bridge.Seed(x))
	case []int32:
		return cellOf(bridge.Seed(x))
	case []float64:
		return cellOf(bridge.Seed(x))
	case []bool:
		return cellOf(bridge.Seed(x))
	case []string:
		return cellOf(bridge.Seed(x))
	}
	return bridge.Arg{}, nil, fmt.Errorf("no cell for kind %s", v.Kind)
}

func cellOf[T bridge.CellValue](c *bridge.Cell[T]) (bridge.Arg, fmt.Stringer, error) {
	return bridge.Out(c), c, nil
}

func printResult(out io.Writer, status int, outputs []output) {
	fmt.Fprintf(out, "Status: %d\n", status)
	for _, o := range outputs {
		fmt.Fprintf(out, "  %s = %s\n", o.name, o.cell)
	}
}
