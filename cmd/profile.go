package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dqmon-cli/internal/notify"
	"github.com/KaramelBytes/dqmon-cli/internal/report"
	"github.com/KaramelBytes/dqmon-cli/internal/store"
	"github.com/KaramelBytes/dqmon-cli/internal/utils"
)

var (
	profileFormat     string
	profileOutput     string
	profileSave       bool
	profileAlert      bool
	profileForceAlert bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <table>",
	Short: "Profile a table and print its data quality report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(profileFormat)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		src, err := openSource(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		run, err := profileTable(ctx, src, args[0])
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := report.Render(&buf, run.Profile, format); err != nil {
			return err
		}
		if profileOutput != "" {
			if err := utils.EnsureDir(filepath.Dir(profileOutput)); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(profileOutput, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s report to %s\n", format, profileOutput)
		} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}

		if profileSave {
			rec, err := store.New(cfg.ReportsDir).Save(run.Profile, run.Eval)
			if err != nil {
				return fmt.Errorf("save report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved report %s\n", rec.ID)
		}

		if profileForceAlert || (profileAlert && run.Eval.Critical) {
			n, err := notify.Build(cfg, logger)
			if err != nil {
				return err
			}
			a, err := notify.NewAlert(run.Profile, run.Eval)
			if err != nil {
				return err
			}
			if err := n.Notify(ctx, a); err != nil {
				return fmt.Errorf("send alert: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Alert sent for %s\n", args[0])
		} else if profileAlert {
			fmt.Fprintf(cmd.ErrOrStderr(), "No alert: %s is within thresholds\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profileFormat, "format", "f", "text", "output format: text, markdown, json, yaml, html")
	profileCmd.Flags().StringVarP(&profileOutput, "output", "o", "", "write the report to a file instead of stdout")
	profileCmd.Flags().BoolVar(&profileSave, "save", false, "store the profile under reports_dir")
	profileCmd.Flags().BoolVar(&profileAlert, "alert", false, "send an alert when the table is critical")
	profileCmd.Flags().BoolVar(&profileForceAlert, "force-alert", false, "send the report through the alert channels regardless of status")
}
