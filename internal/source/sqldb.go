package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// dialect holds what differs between the database/sql backed drivers.
type dialect struct {
	name       string // database/sql driver name
	listTables string
	quote      func(string) string
}

var (
	sqliteDialect = dialect{
		name:       "sqlite",
		listTables: `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
		quote:      quoteDouble,
	}
	sqlserverDialect = dialect{
		name:       "sqlserver",
		listTables: `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`,
		quote:      quoteBracket,
	}
)

func quoteDouble(id string) string   { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
func quoteBracket(id string) string  { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }
func quoteBacktick(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

type sqlSource struct {
	db *sql.DB
	d  dialect
}

func openSQLite(ctx context.Context, cfg Config) (Source, error) {
	return openSQL(ctx, sqliteDialect, cfg.DSN)
}

func openSQLServer(ctx context.Context, cfg Config) (Source, error) {
	return openSQL(ctx, sqlserverDialect, cfg.DSN)
}

func openSQL(ctx context.Context, d dialect, dsn string) (Source, error) {
	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, unavailable(d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable(d.name, err)
	}
	return &sqlSource{db: db, d: d}, nil
}

func (s *sqlSource) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.d.listTables)
	if err != nil {
		return nil, unavailable(s.d.name, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable(s.d.name, err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(s.d.name, err)
	}
	return out, nil
}

func (s *sqlSource) Snapshot(ctx context.Context, table string) (*quality.Snapshot, error) {
	if err := requireTable(ctx, s, table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.d.quote(table))
	if err != nil {
		return nil, unavailable(s.d.name, err)
	}
	defer rows.Close()
	snap, err := scanRows(rows)
	if err != nil {
		return nil, unavailable(s.d.name, fmt.Errorf("read %s: %w", table, err))
	}
	return snap, nil
}

func (s *sqlSource) Close() error { return s.db.Close() }

// scanRows drains rows into a snapshot, converting each cell with the
// declared database type of its column.
func scanRows(rows *sql.Rows) (*quality.Snapshot, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	columns := make([]quality.Column, len(types))
	classes := make([]typeClass, len(types))
	for i, ct := range types {
		classes[i] = classOf(ct.DatabaseTypeName())
		columns[i] = quality.Column{Name: ct.Name(), Declared: classes[i].kind()}
	}

	var data [][]quality.Value
	raw := make([]any, len(types))
	dest := make([]any, len(types))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]quality.Value, len(raw))
		for i, v := range raw {
			row[i] = convertValue(v, classes[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quality.NewSnapshot(columns, data)
}
