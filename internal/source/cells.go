package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// cellTable is a header plus string records as read from a CSV file or a sheet.
type cellTable struct {
	header  []string
	records [][]string
}

// snapshot infers a value type per column and converts the records. A column
// becomes numeric when every non-null cell parses as a number, temporal when
// every non-null cell parses as a date or timestamp, and text otherwise. Cells
// are kept verbatim so padding and casing survive for the inconsistency checks.
func (t cellTable) snapshot(nullTokens []string) (*quality.Snapshot, error) {
	nulls := make(map[string]struct{}, len(nullTokens))
	for _, tok := range nullTokens {
		nulls[tok] = struct{}{}
	}
	isNull := func(s string) bool { _, ok := nulls[s]; return ok }

	names := headerNames(t.header)
	ncol := len(names)
	for i, rec := range t.records {
		if len(rec) > ncol {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", i+1, len(rec), ncol)
		}
	}

	columns := make([]quality.Column, ncol)
	rows := make([][]quality.Value, len(t.records))
	for i := range rows {
		rows[i] = make([]quality.Value, ncol)
	}
	for j := 0; j < ncol; j++ {
		class := inferClass(t.records, j, isNull)
		columns[j] = quality.Column{Name: names[j], Declared: class.kind()}
		for i, rec := range t.records {
			if j >= len(rec) || isNull(rec[j]) {
				rows[i][j] = quality.Missing
				continue
			}
			rows[i][j] = decodeText(rec[j], class)
		}
	}
	return quality.NewSnapshot(columns, rows)
}

func inferClass(records [][]string, j int, isNull func(string) bool) typeClass {
	numeric, temporal, seen := true, true, false
	for _, rec := range records {
		if j >= len(rec) || isNull(rec[j]) {
			continue
		}
		seen = true
		if numeric {
			if _, ok := parseNumber(rec[j]); !ok {
				numeric = false
			}
		}
		if temporal {
			if _, ok := parseTimeMaybe(rec[j]); !ok {
				temporal = false
			}
		}
		if !numeric && !temporal {
			return classText
		}
	}
	switch {
	case !seen:
		return classUnknown
	case numeric:
		return classNumber
	case temporal:
		return classTemporal
	}
	return classText
}

// headerNames trims header cells, names blank ones by position and suffixes
// repeats with ".1", ".2" and so on so every column name is unique.
func headerNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		base := name
		for n := 1; used[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
