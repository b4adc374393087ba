// Package source turns tables held in databases and files into quality
// snapshots. Drivers register themselves by name; callers go through Open.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

var (
	// ErrSourceUnavailable wraps every failure to reach or read a source.
	ErrSourceUnavailable = errors.New("data source unavailable")
	// ErrUnknownDriver is returned by Open for unregistered driver names.
	ErrUnknownDriver = errors.New("unknown source driver")
	// ErrTableNotFound is returned by Snapshot when the table is not listed by Tables.
	ErrTableNotFound = errors.New("table not found")
)

// Source lists and reads tables from one backing store.
type Source interface {
	Tables(ctx context.Context) ([]string, error)
	Snapshot(ctx context.Context, table string) (*quality.Snapshot, error)
	Close() error
}

// Config carries the knobs shared by every driver.
type Config struct {
	Driver string
	DSN    string
	// NullTokens are cell contents read as missing by the file drivers.
	NullTokens []string
}

// Factory builds a Source for a registered driver.
type Factory func(ctx context.Context, cfg Config) (Source, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes a driver available to Open. Registering a name twice replaces the factory.
func Register(driver string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[driver] = f
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open connects to the source described by cfg.
func Open(ctx context.Context, cfg Config) (Source, error) {
	mu.RLock()
	f, ok := registry[cfg.Driver]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownDriver, cfg.Driver, Drivers())
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: %s: empty dsn", ErrSourceUnavailable, cfg.Driver)
	}
	return f(ctx, cfg)
}

func unavailable(driver string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, driver, err)
}

// requireTable guards Snapshot against names the source does not list, which
// also keeps arbitrary text out of the SELECT statements built by the SQL drivers.
func requireTable(ctx context.Context, s Source, table string) error {
	tables, err := s.Tables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t == table {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrTableNotFound, table)
}

func init() {
	Register("mysql", openMySQL)
	Register("postgres", openPostgres)
	Register("sqlite", openSQLite)
	Register("sqlserver", openSQLServer)
	Register("csv", openCSV)
	Register("xlsx", openXLSX)
}
