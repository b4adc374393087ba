package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dqmon-cli/internal/config"
	dqlog "github.com/KaramelBytes/dqmon-cli/internal/log"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Source overrides (take precedence over config and env)
	flagDriver string
	flagDSN    string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Process logger; replaced once config is loaded
	logger = dqlog.NewLogger("info", "text", os.Stderr)
)

var rootCmd = &cobra.Command{
	Use:   "dqmon",
	Short: "dqmon: profile database tables and alert on data quality problems",
	Long: `dqmon snapshots tables from MySQL, PostgreSQL, SQLite, SQL Server, CSV or XLSX
sources, profiles every column, detects duplicates, missing values and text
inconsistencies, and alerts by email or Telegram when a table crosses the
quality thresholds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dqmon/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "source driver: mysql, postgres, sqlite, sqlserver, csv, xlsx (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "source DSN or file path (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("driver") && flagDriver != "" {
		cfg.SourceDriver = flagDriver
	}
	if f.Changed("dsn") && flagDSN != "" {
		cfg.SourceDSN = flagDSN
	}
	level := cfg.LogLevel
	if debug {
		level = logrus.DebugLevel.String()
	}
	logger = dqlog.NewLogger(level, cfg.LogFormat, os.Stderr)
}

// requireConfig returns the loaded config, loading it now if startup failed.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
