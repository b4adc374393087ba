package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dqmon-cli/internal/config"
	"github.com/KaramelBytes/dqmon-cli/internal/source"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dqmon configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "source_driver: %s\n", cfg.SourceDriver)
		fmt.Fprintf(out, "source_dsn: %s\n", cfg.SourceDSN)
		fmt.Fprintf(out, "csv_null_tokens: %q\n", cfg.CSVNullTokens)
		if cfg.Parallelism > 0 {
			fmt.Fprintf(out, "parallelism: %d\n", cfg.Parallelism)
		}
		fmt.Fprintf(out, "reports_dir: %s\n", cfg.ReportsDir)
		fmt.Fprintf(out, "alert_channels: %s\n", strings.Join(cfg.AlertChannels, ","))
		fmt.Fprintf(out, "alert_recipients: %s\n", strings.Join(cfg.AlertRecipients, ","))
		fmt.Fprintf(out, "alert_cooldown_sec: %d\n", cfg.AlertCooldownSec)
		fmt.Fprintf(out, "smtp_host: %s\n", cfg.SMTPHost)
		fmt.Fprintf(out, "smtp_port: %d\n", cfg.SMTPPort)
		fmt.Fprintf(out, "smtp_username: %s\n", cfg.SMTPUsername)
		fmt.Fprintf(out, "smtp_password: %s\n", mask(cfg.SMTPPassword))
		fmt.Fprintf(out, "smtp_from: %s\n", cfg.SMTPFrom)
		fmt.Fprintf(out, "telegram_token: %s\n", mask(cfg.TelegramToken))
		if cfg.TelegramChatID != 0 {
			fmt.Fprintf(out, "telegram_chat_id: %d\n", cfg.TelegramChatID)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "metrics_addr: %s\n", cfg.MetricsAddr)
		fmt.Fprintf(out, "watch_interval_sec: %d\n", cfg.WatchIntervalSec)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Reload so --driver/--dsn overrides are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		switch key {
		case "source_driver":
			d := strings.ToLower(val)
			if !knownDriver(d) {
				return fmt.Errorf("invalid source_driver: %s (use one of %s)", val, strings.Join(source.Drivers(), ", "))
			}
			cfg.SourceDriver = d
		case "source_dsn":
			cfg.SourceDSN = val
		case "csv_null_tokens":
			// Tokens are matched exactly, so only the separators are split.
			cfg.CSVNullTokens = strings.Split(val, ",")
		case "parallelism":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for parallelism: %v", val)
			}
			cfg.Parallelism = i
		case "reports_dir":
			cfg.ReportsDir = val
		case "alert_channels":
			cfg.AlertChannels = splitList(val)
		case "alert_recipients":
			cfg.AlertRecipients = splitList(val)
		case "alert_cooldown_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for alert_cooldown_sec: %v", val)
			}
			cfg.AlertCooldownSec = i
		case "smtp_host":
			cfg.SMTPHost = val
		case "smtp_port":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 || i > 65535 {
				return fmt.Errorf("invalid port for smtp_port: %v", val)
			}
			cfg.SMTPPort = i
		case "smtp_username":
			cfg.SMTPUsername = val
		case "smtp_password":
			cfg.SMTPPassword = val
		case "smtp_from":
			cfg.SMTPFrom = val
		case "telegram_token":
			cfg.TelegramToken = val
		case "telegram_chat_id":
			id, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for telegram_chat_id: %w", err)
			}
			cfg.TelegramChatID = id
		case "log_level":
			cfg.LogLevel = val
		case "log_format":
			if val != "text" && val != "json" {
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
			cfg.LogFormat = val
		case "metrics_addr":
			cfg.MetricsAddr = val
		case "watch_interval_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for watch_interval_sec: %v", val)
			}
			cfg.WatchIntervalSec = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func knownDriver(d string) bool {
	for _, n := range source.Drivers() {
		if n == d {
			return true
		}
	}
	return false
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
