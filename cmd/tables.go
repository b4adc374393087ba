package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of the configured source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		src, err := openSource(ctx)
		if err != nil {
			return err
		}
		defer src.Close()
		tables, err := src.Tables(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(tables) == 0 {
			fmt.Fprintln(out, "(no tables)")
			return nil
		}
		for _, t := range tables {
			fmt.Fprintf(out, "- %s\n", t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
