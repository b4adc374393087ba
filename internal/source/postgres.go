package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

const pgListTables = `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
ORDER BY table_name`

type postgresSource struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, cfg Config) (Source, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, unavailable("postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("postgres", err)
	}
	return &postgresSource{pool: pool}, nil
}

func (s *postgresSource) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, pgListTables)
	if err != nil {
		return nil, unavailable("postgres", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, unavailable("postgres", err)
	}
	return tables, nil
}

func (s *postgresSource) Snapshot(ctx context.Context, table string) (*quality.Snapshot, error) {
	if err := requireTable(ctx, s, table); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{table}.Sanitize())
	if err != nil {
		return nil, unavailable("postgres", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]quality.Column, len(fields))
	classes := make([]typeClass, len(fields))
	types := rows.Conn().TypeMap()
	for i, fd := range fields {
		if t, ok := types.TypeForOID(fd.DataTypeOID); ok {
			classes[i] = classOf(t.Name)
		}
		columns[i] = quality.Column{Name: fd.Name, Declared: classes[i].kind()}
	}

	var data [][]quality.Value
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, unavailable("postgres", fmt.Errorf("read %s: %w", table, err))
		}
		row := make([]quality.Value, len(raw))
		for i, v := range raw {
			row[i] = convertPostgres(v, classes[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("postgres", fmt.Errorf("read %s: %w", table, err))
	}
	return quality.NewSnapshot(columns, data)
}

func (s *postgresSource) Close() error {
	s.pool.Close()
	return nil
}

// convertPostgres handles the pgx decoded types database/sql drivers never
// produce, then defers to convertValue.
func convertPostgres(raw any, class typeClass) quality.Value {
	switch v := raw.(type) {
	case pgtype.Numeric:
		// Integral NUMERIC keys stay exact; fractional values are an error here.
		if i, err := v.Int64Value(); err == nil && i.Valid {
			return quality.Int(i.Int64)
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return quality.Missing
		}
		return quality.Number(f.Float64)
	case [16]byte:
		return quality.Text(uuid.UUID(v).String())
	}
	return convertValue(raw, class)
}
