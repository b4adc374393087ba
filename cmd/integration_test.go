package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const employeesCSV = `id,name,email,age,salary
1,John Doe,john@email.com,25,50000
2,jane smith,jane@email.com,30,60000
3,Bob Johnson ,bob@email.com,35,70000
4,,missing@email.com,40,80000
5,Alice Brown,alice@email.com,28,55000
5,Alice Brown,alice@email.com,28,55000
7,Charlie Wilson,charlie@email.com,45,90000
8,diana prince,diana@email.com,32,65000
9,Eve Adams,NULL,29,58000
10,Frank Miller,frank@email.com,NA,1000000
`

const cleanCSV = `sku,qty
a-1,3
b-2,4
`

// resetFlags restores every flag to its default so state does not leak
// between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	return buf.String(), err
}

// sandbox isolates HOME (config and reports) and writes the CSV fixtures.
func sandbox(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	data = filepath.Join(home, "data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range map[string]string{"employees.csv": employeesCSV, "inventory.csv": cleanCSV} {
		if err := os.WriteFile(filepath.Join(data, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return home, data
}

func TestCLI_Tables(t *testing.T) {
	_, data := sandbox(t)
	out := runCmd(t, "tables", "--driver", "csv", "--dsn", data)
	if out != "- employees\n- inventory\n" {
		t.Fatalf("unexpected tables output: %q", out)
	}
}

func TestCLI_ProfileJSON(t *testing.T) {
	_, data := sandbox(t)
	out := runCmd(t, "profile", "employees", "--driver", "csv", "--dsn", data, "--format", "json")

	var p struct {
		TableName    string `json:"table_name"`
		TotalRows    int    `json:"total_rows"`
		TotalColumns int    `json:"total_columns"`
		Issues       struct {
			Missing    map[string]json.RawMessage `json:"missing_by_column"`
			Duplicates int                        `json:"duplicate_row_count"`
		} `json:"data_quality_issues"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("profile output is not JSON: %v\n%s", err, out)
	}
	if p.TableName != "employees" || p.TotalRows != 10 || p.TotalColumns != 5 {
		t.Fatalf("unexpected profile header: %+v", p)
	}
	if p.Issues.Duplicates != 1 {
		t.Fatalf("duplicate_row_count = %d, want 1", p.Issues.Duplicates)
	}
	for _, col := range []string{"name", "email", "age"} {
		if _, ok := p.Issues.Missing[col]; !ok {
			t.Fatalf("expected %s in missing_by_column, got %v", col, p.Issues.Missing)
		}
	}
}

func TestCLI_ProfileTextWritesFile(t *testing.T) {
	home, data := sandbox(t)
	dst := filepath.Join(home, "out", "employees.md")
	out := runCmd(t, "profile", "employees", "--driver", "csv", "--dsn", data, "-f", "md", "-o", dst)
	if out != "" {
		t.Fatalf("stdout should be empty when writing to a file, got %q", out)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "[DATA QUALITY ISSUES]") {
		t.Fatalf("markdown report missing issues section:\n%s", b)
	}
}

func TestCLI_ProfileErrors(t *testing.T) {
	_, data := sandbox(t)
	if _, err := execCmd("profile", "nope", "--driver", "csv", "--dsn", data); err == nil {
		t.Fatalf("expected error for unknown table")
	}
	if _, err := execCmd("profile", "employees", "--driver", "csv", "--dsn", data, "-f", "pdf"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := execCmd("profile", "employees", "--driver", "csv"); err == nil {
		t.Fatalf("expected error without a DSN")
	}
	if _, err := execCmd("profile", "employees", "--driver", "oracle", "--dsn", data); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestCLI_SaveAndReports(t *testing.T) {
	_, data := sandbox(t)
	runCmd(t, "profile", "employees", "--driver", "csv", "--dsn", data, "--save")
	runCmd(t, "profile", "inventory", "--driver", "csv", "--dsn", data, "--save", "--alert")

	if out := runCmd(t, "reports"); out != "- employees\n- inventory\n" {
		t.Fatalf("unexpected reports listing: %q", out)
	}
	list := runCmd(t, "reports", "employees")
	if !strings.Contains(list, "CRITICAL") {
		t.Fatalf("employees run should be listed as critical:\n%s", list)
	}
	shown := runCmd(t, "reports", "inventory", "--show", "latest", "-f", "json")
	if !strings.Contains(shown, `"table_name": "inventory"`) {
		t.Fatalf("stored report not rendered:\n%s", shown)
	}
	if _, err := execCmd("reports", "--show", "latest"); err == nil {
		t.Fatalf("expected error for --show without a table")
	}
}

func TestCLI_ReportsShowRejectsRecordWithoutProfile(t *testing.T) {
	home, _ := sandbox(t)
	dir := filepath.Join(home, ".dqmon", "reports", "users")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "latest.json"), []byte(`{"id":"r1","table":"users","profile":null}`), 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
	if _, err := execCmd("reports", "users", "--show", "latest"); err == nil {
		t.Fatalf("expected error for a record without a profile")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home, data := sandbox(t)
	runCmd(t, "config", "set", "source_driver", "csv")
	runCmd(t, "config", "set", "source_dsn", data)
	runCmd(t, "config", "set", "alert_channels", "log, telegram")
	runCmd(t, "config", "set", "telegram_token", "123456:ABCDEFGH")
	runCmd(t, "config", "set", "telegram_chat_id", "-1001")

	info, err := os.Stat(filepath.Join(home, ".dqmon", "config.yaml"))
	if err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("config mode = %v, want 0600", info.Mode().Perm())
	}

	out := runCmd(t, "config", "show")
	for _, want := range []string{
		"source_driver: csv\n",
		"source_dsn: " + data + "\n",
		"alert_channels: log,telegram\n",
		"telegram_token: 123****FGH\n",
		"telegram_chat_id: -1001\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ABCDEFGH") {
		t.Fatalf("secret leaked in config show:\n%s", out)
	}

	// The saved source is used without flags.
	if out := runCmd(t, "tables"); !strings.Contains(out, "- inventory") {
		t.Fatalf("tables from saved config: %q", out)
	}

	for _, bad := range [][]string{
		{"config", "set", "source_driver", "oracle"},
		{"config", "set", "smtp_port", "99999"},
		{"config", "set", "log_format", "xml"},
		{"config", "set", "nope", "1"},
	} {
		if _, err := execCmd(bad...); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func TestCLI_WatchOnce(t *testing.T) {
	home, data := sandbox(t)
	runCmd(t, "watch", "--once", "--save", "--metrics-addr=", "--driver", "csv", "--dsn", data)

	for _, table := range []string{"employees", "inventory"} {
		if _, err := os.Stat(filepath.Join(home, ".dqmon", "reports", table, "latest.json")); err != nil {
			t.Fatalf("watch did not save %s: %v", table, err)
		}
	}
}
