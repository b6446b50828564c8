package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/tensornet/internal/backend"
	"github.com/born-ml/tensornet/internal/backend/cpu"
	"github.com/born-ml/tensornet/internal/backend/registry"
	"github.com/spf13/cobra"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List compute devices and whether they can be opened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEXECUTOR\tSTATUS\tDETAILS")
			for _, name := range registry.Names() {
				exec, err := registry.Open(name)
				switch {
				case errors.Is(err, backend.ErrUnavailable):
					fmt.Fprintf(w, "%s\t-\tunavailable\t%v\n", name, err)
					continue
				case err != nil:
					return err
				}
				details := "-"
				if c, ok := exec.(*cpu.Executor); ok {
					if f := c.Features(); len(f) > 0 {
						details = strings.Join(f, ",")
					}
				}
				fmt.Fprintf(w, "%s\t%s\tok\t%s\n", name, exec.Name(), details)
				exec.Release()
			}
			return w.Flush()
		},
	}
}
