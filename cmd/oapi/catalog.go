package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/oriys/oapi/internal/catalog"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect method contracts",
	}
	cmd.AddCommand(catalogListCmd(), catalogShowCmd())
	return cmd
}

func catalogListCmd() *cobra.Command {
	var api string

	cmd := &cobra.Command{
		Use:     "list [component]",
		Aliases: []string{"ls"},
		Short:   "List components and methods",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cfg, api)
			if err != nil {
				return err
			}

			components := cat.Components()
			if len(args) == 1 {
				components = []string{args[0]}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COMPONENT\tMETHOD\tARITY\tREQUIRED\tNOTE")
			n := 0
			for _, comp := range components {
				for _, m := range cat.Methods(comp) {
					note := ""
					if m.Deprecated {
						note = "deprecated"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", m.Component, m.Name, m.Arity(), m.RequiredArity(), note)
					n++
				}
			}
			w.Flush()

			if n == 0 {
				return fmt.Errorf("no methods for %s in catalog %s", strings.Join(args, " "), cat.Version)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&api, "api", "", "API version (v14, v15); defaults to the configured version")
	return cmd
}

func catalogShowCmd() *cobra.Command {
	var api string

	cmd := &cobra.Command{
		Use:   "show <component> <method>",
		Short: "Show the parameters of a method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cfg, api)
			if err != nil {
				return err
			}
			m, err := cat.Lookup(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Method: %s (%s)\n", m, cat.Version)
			if m.Deprecated {
				fmt.Fprintln(out, "  Deprecated")
			}
			printParams(out, m)
			return nil
		},
	}

	cmd.Flags().StringVar(&api, "api", "", "API version (v14, v15); defaults to the configured version")
	return cmd
}

func printParams(out io.Writer, m *catalog.Method) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tNAME\tKIND\tDIR\tDEFAULT")
	for i, p := range m.Params {
		def := "-"
		if p.Optional {
			def = p.Default.String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i, p.Name, p.Kind, p.Dir, def)
	}
	w.Flush()
}
