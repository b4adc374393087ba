package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SourceDriver != "mysql" {
		t.Fatalf("source_driver = %q, want mysql", c.SourceDriver)
	}
	if want := filepath.Join(home, ".dqmon", "reports"); c.ReportsDir != want {
		t.Fatalf("reports_dir = %q, want %q", c.ReportsDir, want)
	}
	if !reflect.DeepEqual(c.CSVNullTokens, DefaultNullTokens) {
		t.Fatalf("csv_null_tokens = %q", c.CSVNullTokens)
	}
	if c.SMTPPort != 587 || c.AlertCooldownSec != 3600 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if !reflect.DeepEqual(c.AlertChannels, []string{"log"}) {
		t.Fatalf("alert_channels = %q", c.AlertChannels)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	path := filepath.Join(home, "cfg.yaml")

	in := &Global{
		SourceDriver:    "sqlite",
		SourceDSN:       "file:test.db",
		AlertChannels:   []string{"smtp", "telegram"},
		AlertRecipients: []string{"ops@example.com"},
		SMTPUsername:    "bot@example.com",
		TelegramChatID:  -1001,
	}
	if err := Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("config mode = %v, want 0600", info.Mode().Perm())
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.SourceDriver != "sqlite" || out.SourceDSN != "file:test.db" {
		t.Fatalf("source not restored: %+v", out)
	}
	if !reflect.DeepEqual(out.AlertChannels, []string{"smtp", "telegram"}) {
		t.Fatalf("alert_channels = %q", out.AlertChannels)
	}
	if out.SMTPFrom != "bot@example.com" {
		t.Fatalf("smtp_from should fall back to username, got %q", out.SMTPFrom)
	}
	if out.TelegramChatID != -1001 {
		t.Fatalf("telegram_chat_id = %d", out.TelegramChatID)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	t.Setenv("DQMON_SOURCE_DRIVER", "postgres")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SourceDriver != "postgres" {
		t.Fatalf("source_driver = %q, want postgres", c.SourceDriver)
	}
}

func TestDotEnvIsLoaded(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	if err := os.WriteFile(filepath.Join(home, ".env"), []byte("DQMON_SOURCE_DSN=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DQMON_SOURCE_DSN") })

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SourceDSN != "from-dotenv" {
		t.Fatalf("source_dsn = %q, want from-dotenv", c.SourceDSN)
	}
}
