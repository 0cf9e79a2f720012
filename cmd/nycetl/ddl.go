package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nycetl/internal/dataset"
	"nycetl/internal/ddl"
)

var ddlCmd = &cobra.Command{
	Use:   "ddl [dataset]...",
	Short: "Print CREATE TABLE statements for the named datasets",
	Long: `Ddl renders a CREATE TABLE statement per dataset from the same column
list the loader inserts with. With no arguments it prints all datasets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = dataset.Names()
		}
		for _, name := range names {
			d, ok := dataset.Get(name)
			if !ok {
				return fmt.Errorf("unknown dataset %q (have: %v)", name, dataset.Names())
			}
			stmt, err := ddl.BuildCreateTableSQL(ddl.FromDataset(d))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), stmt)
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ddlCmd)
}
