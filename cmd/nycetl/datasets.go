package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nycetl/internal/dataset"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the registered datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTABLE\tCOLUMNS\tBATCH\tUPSERT KEYS")
		for _, name := range dataset.Names() {
			d, _ := dataset.Get(name)
			keys := "-"
			if len(d.KeyColumns) > 0 {
				keys = strings.Join(d.KeyColumns, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				d.Name, d.Table, len(d.Columns), d.BatchSize, keys)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
