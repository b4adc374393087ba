package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Data source
	SourceDriver  string   `mapstructure:"source_driver" yaml:"source_driver"`
	SourceDSN     string   `mapstructure:"source_dsn" yaml:"source_dsn"`
	CSVNullTokens []string `mapstructure:"csv_null_tokens" yaml:"csv_null_tokens"`

	// Profiling
	Parallelism int    `mapstructure:"parallelism" yaml:"parallelism"`
	ReportsDir  string `mapstructure:"reports_dir" yaml:"reports_dir"`

	// Alert delivery
	AlertChannels    []string `mapstructure:"alert_channels" yaml:"alert_channels"`
	AlertRecipients  []string `mapstructure:"alert_recipients" yaml:"alert_recipients"`
	AlertCooldownSec int      `mapstructure:"alert_cooldown_sec" yaml:"alert_cooldown_sec"`
	SMTPHost         string   `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort         int      `mapstructure:"smtp_port" yaml:"smtp_port"`
	SMTPUsername     string   `mapstructure:"smtp_username" yaml:"smtp_username"`
	SMTPPassword     string   `mapstructure:"smtp_password" yaml:"smtp_password"`
	SMTPFrom         string   `mapstructure:"smtp_from" yaml:"smtp_from"`
	TelegramToken    string   `mapstructure:"telegram_token" yaml:"telegram_token"`
	TelegramChatID   int64    `mapstructure:"telegram_chat_id" yaml:"telegram_chat_id"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Watch mode
	MetricsAddr      string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	WatchIntervalSec int    `mapstructure:"watch_interval_sec" yaml:"watch_interval_sec"`
}

// DefaultNullTokens are the CSV/XLSX cell contents read as missing.
var DefaultNullTokens = []string{"", "NULL", `\N`, "NA"}

// Dir returns ~/.dqmon, the home of the config file and stored reports.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dqmon"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dqmon/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// The file may hold SMTP and Telegram secrets.
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env file in the working directory) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DQMON")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source_driver", "mysql")
	v.SetDefault("source_dsn", "")
	v.SetDefault("csv_null_tokens", DefaultNullTokens)
	v.SetDefault("parallelism", 0)
	v.SetDefault("reports_dir", "")
	v.SetDefault("alert_channels", []string{"log"})
	v.SetDefault("alert_recipients", []string{})
	v.SetDefault("alert_cooldown_sec", 3600)
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_from", "")
	v.SetDefault("telegram_token", "")
	v.SetDefault("telegram_chat_id", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics_addr", ":9108")
	v.SetDefault("watch_interval_sec", 3600)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ReportsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ReportsDir = filepath.Join(dir, "reports")
	}
	if c.SMTPFrom == "" {
		c.SMTPFrom = c.SMTPUsername
	}
	return &c, nil
}
