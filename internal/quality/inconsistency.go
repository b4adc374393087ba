package quality

import (
	"strings"
	"unicode/utf8"
)

const maxInconsistencyExamples = 5

// InconsistencyKind names a formatting irregularity.
type InconsistencyKind string

const (
	MixedCase  InconsistencyKind = "mixed_case"
	Whitespace InconsistencyKind = "leading_or_trailing_whitespace"
)

// Inconsistency groups the offending rows of one kind in one column.
type Inconsistency struct {
	Column   string            `json:"column"`
	Kind     InconsistencyKind `json:"kind"`
	Count    int               `json:"count"`
	Examples []string          `json:"examples"`
}

// DetectInconsistencies scans the textual columns of s in column order.
func DetectInconsistencies(s *Snapshot) []Inconsistency {
	if s == nil {
		return []Inconsistency{}
	}
	kinds := make([]Kind, len(s.columns))
	for j, c := range s.columns {
		kinds[j] = Classify(s.Column(j), c.Declared)
	}
	return detectInconsistencies(s, kinds)
}

func detectInconsistencies(s *Snapshot, kinds []Kind) []Inconsistency {
	out := []Inconsistency{}
	for j, c := range s.columns {
		if kinds[j] != KindTextual {
			continue
		}
		values := s.Column(j)
		if inc, ok := scanColumn(c.Name, MixedCase, values, isMixedCase); ok {
			out = append(out, inc)
		}
		if inc, ok := scanColumn(c.Name, Whitespace, values, hasOuterWhitespace); ok {
			out = append(out, inc)
		}
	}
	return out
}

func scanColumn(column string, kind InconsistencyKind, values []Value, flagged func(string) bool) (Inconsistency, bool) {
	inc := Inconsistency{Column: column, Kind: kind, Examples: []string{}}
	for _, v := range values {
		s, ok := v.Str()
		if !ok || !flagged(s) {
			continue
		}
		inc.Count++
		if len(inc.Examples) < maxInconsistencyExamples {
			inc.Examples = append(inc.Examples, s)
		}
	}
	return inc, inc.Count > 0
}

// isMixedCase reports whether s is neither entirely lower-case nor entirely
// upper-case. Strings without cased letters equal both forms and are never
// flagged. Bytes that are not valid UTF-8 carry no case and are ignored.
func isMixedCase(s string) bool {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

func hasOuterWhitespace(s string) bool {
	return strings.TrimSpace(s) != s
}
