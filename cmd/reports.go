package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dqmon-cli/internal/report"
	"github.com/KaramelBytes/dqmon-cli/internal/store"
)

var (
	reportsShow   string
	reportsFormat string
)

var reportsCmd = &cobra.Command{
	Use:   "reports [table]",
	Short: "List stored reports, or show one with --show",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		st := store.New(c.ReportsDir)
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			if reportsShow != "" {
				return fmt.Errorf("--show needs a table name")
			}
			tables, err := st.Tables()
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Fprintln(out, "(no reports)")
				return nil
			}
			for _, t := range tables {
				fmt.Fprintf(out, "- %s\n", t)
			}
			return nil
		}

		tableName := args[0]
		if reportsShow != "" {
			format, err := report.ParseFormat(reportsFormat)
			if err != nil {
				return err
			}
			var rec *store.Record
			if reportsShow == "latest" {
				rec, err = st.Latest(tableName)
			} else {
				rec, err = st.Get(tableName, reportsShow)
			}
			if err != nil {
				return err
			}
			if rec.Profile == nil {
				return fmt.Errorf("report %s of %s: %w", rec.ID, tableName, store.ErrNoProfile)
			}
			return report.Render(out, rec.Profile, format)
		}

		runs, err := st.List(tableName)
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"ID", "Saved", "Status", "Rows", "Duplicates", "Missing Cols", "Inconsistencies"})
		for _, r := range runs {
			status := "ok"
			if r.Critical {
				status = "CRITICAL"
			}
			t.AppendRow(table.Row{r.ID, r.SavedAt.Local().Format("2006-01-02 15:04:05"), status, r.Rows, r.DuplicateRows, r.MissingColumns, r.Inconsistencies})
		}
		t.SetStyle(table.StyleDefault)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.Flags().StringVar(&reportsShow, "show", "", "render a stored report by id, or 'latest'")
	reportsCmd.Flags().StringVarP(&reportsFormat, "format", "f", "text", "format for --show: text, markdown, json, yaml, html")
}
