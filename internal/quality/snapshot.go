package quality

import "fmt"

// Column describes one snapshot column. Declared is the schema type when the
// data source knows it, KindUnknown otherwise.
type Column struct {
	Name     string
	Declared Kind
}

// NamedColumns builds undeclared columns from names.
func NamedColumns(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return cols
}

// Snapshot is an immutable point-in-time copy of a table.
type Snapshot struct {
	columns []Column
	rows    [][]Value
}

// NewSnapshot validates and copies columns and rows. Every row must have
// exactly one value per column and column names must be unique.
func NewSnapshot(columns []Column, rows [][]Value) (*Snapshot, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	s := &Snapshot{
		columns: append([]Column(nil), columns...),
		rows:    make([][]Value, len(rows)),
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrRowWidth, i, len(r), len(columns))
		}
		s.rows[i] = append([]Value(nil), r...)
	}
	return s, nil
}

// Columns returns a copy of the column descriptors in table order.
func (s *Snapshot) Columns() []Column { return append([]Column(nil), s.columns...) }

func (s *Snapshot) NumColumns() int { return len(s.columns) }

func (s *Snapshot) NumRows() int { return len(s.rows) }

// Row returns a copy of row i.
func (s *Snapshot) Row(i int) []Value { return append([]Value(nil), s.rows[i]...) }

// Column returns the values of column j in row order.
func (s *Snapshot) Column(j int) []Value {
	out := make([]Value, len(s.rows))
	for i, r := range s.rows {
		out[i] = r[j]
	}
	return out
}
