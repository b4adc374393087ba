package quality

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TableProfile is the report produced for one snapshot. It is a value: the
// engine keeps no reference to it after returning.
type TableProfile struct {
	TableName    string         `json:"table_name"`
	GeneratedAt  time.Time      `json:"generated_at"`
	TotalRows    int            `json:"total_rows"`
	TotalColumns int            `json:"total_columns"`
	Columns      ColumnProfiles `json:"column_profiles"`
	Issues       Issues         `json:"data_quality_issues"`
}

// Issues aggregates table-level findings.
type Issues struct {
	MissingByColumn   MissingByColumn `json:"missing_by_column"`
	DuplicateRowCount int             `json:"duplicate_row_count"`
	Inconsistencies   []Inconsistency `json:"inconsistencies"`
}

// MissingEntry is the missing-value finding of one column.
type MissingEntry struct {
	Column     string  `json:"-"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MissingByColumn lists columns with at least one missing value in table
// order. It encodes as a JSON object keyed by column name.
type MissingByColumn []MissingEntry

// Get returns the entry for column, if any.
func (m MissingByColumn) Get(column string) (MissingEntry, bool) {
	for _, e := range m {
		if e.Column == column {
			return e, true
		}
	}
	return MissingEntry{}, false
}

func (m MissingByColumn) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(m), func(i int) (string, any) { return m[i].Column, m[i] })
}

func (m *MissingByColumn) UnmarshalJSON(b []byte) error {
	*m = MissingByColumn{}
	return unmarshalOrdered(b, func(key string, dec *json.Decoder) error {
		var e MissingEntry
		if err := dec.Decode(&e); err != nil {
			return err
		}
		e.Column = key
		*m = append(*m, e)
		return nil
	})
}

// ColumnProfiles is an insertion-ordered mapping from column name to profile.
type ColumnProfiles struct {
	order  []string
	byName map[string]ColumnProfile
}

func (c *ColumnProfiles) set(name string, p ColumnProfile) {
	if c.byName == nil {
		c.byName = make(map[string]ColumnProfile)
	}
	if _, ok := c.byName[name]; !ok {
		c.order = append(c.order, name)
	}
	c.byName[name] = p
}

// Names returns column names in table order.
func (c ColumnProfiles) Names() []string { return append([]string(nil), c.order...) }

func (c ColumnProfiles) Len() int { return len(c.order) }

func (c ColumnProfiles) Get(name string) (ColumnProfile, bool) {
	p, ok := c.byName[name]
	return p, ok
}

func (c ColumnProfiles) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(c.order), func(i int) (string, any) {
		return c.order[i], c.byName[c.order[i]]
	})
}

func (c *ColumnProfiles) UnmarshalJSON(b []byte) error {
	*c = ColumnProfiles{}
	return unmarshalOrdered(b, func(key string, dec *json.Decoder) error {
		var p ColumnProfile
		if err := dec.Decode(&p); err != nil {
			return err
		}
		c.set(key, p)
		return nil
	})
}

func marshalOrdered(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, v := entry(i)
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func unmarshalOrdered(b []byte, entry func(key string, dec *json.Decoder) error) error {
	if string(bytes.TrimSpace(b)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		if err := entry(key, dec); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}
