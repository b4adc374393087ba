package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// typeClass groups database type names by how their values are converted.
type typeClass uint8

const (
	classUnknown typeClass = iota
	classNumber
	classText
	classBinary
	classTemporal
	classBool
)

var typeClasses = map[string]typeClass{
	"TINYINT": classNumber, "SMALLINT": classNumber, "MEDIUMINT": classNumber,
	"INT": classNumber, "INTEGER": classNumber, "BIGINT": classNumber,
	"INT2": classNumber, "INT4": classNumber, "INT8": classNumber,
	"DECIMAL": classNumber, "NUMERIC": classNumber, "REAL": classNumber,
	"FLOAT": classNumber, "FLOAT4": classNumber, "FLOAT8": classNumber,
	"DOUBLE": classNumber, "MONEY": classNumber, "SMALLMONEY": classNumber,

	"CHAR": classText, "VARCHAR": classText, "NCHAR": classText, "NVARCHAR": classText,
	"TEXT": classText, "TINYTEXT": classText, "MEDIUMTEXT": classText, "LONGTEXT": classText,
	"NTEXT": classText, "BPCHAR": classText, "CLOB": classText, "CITEXT": classText,
	"NAME": classText, "ENUM": classText, "SET": classText,

	"BLOB": classBinary, "TINYBLOB": classBinary, "MEDIUMBLOB": classBinary, "LONGBLOB": classBinary,
	"BINARY": classBinary, "VARBINARY": classBinary, "BYTEA": classBinary, "IMAGE": classBinary,

	"DATE": classTemporal, "TIME": classTemporal, "DATETIME": classTemporal, "DATETIME2": classTemporal,
	"SMALLDATETIME": classTemporal, "DATETIMEOFFSET": classTemporal, "TIMESTAMP": classTemporal,
	"TIMESTAMPTZ": classTemporal, "TIMETZ": classTemporal,

	"BOOL": classBool, "BOOLEAN": classBool, "BIT": classBool,
}

// classOf maps a driver type name such as "DECIMAL(10,2)" or "unsigned int"
// to its class. Unrecognised names are classUnknown.
func classOf(typeName string) typeClass {
	t := strings.ToUpper(strings.TrimSpace(typeName))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimPrefix(t, "UNSIGNED ")
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = t[:i]
	}
	return typeClasses[t]
}

func (c typeClass) kind() quality.Kind {
	switch c {
	case classNumber:
		return quality.KindNumeric
	case classText:
		return quality.KindTextual
	case classBinary, classTemporal, classBool:
		return quality.KindOther
	}
	return quality.KindUnknown
}

// convertValue maps a scanned driver value to a quality value. Drivers that
// hand back raw bytes for every type (MySQL's text protocol, SQL Server
// decimals) are decoded using the declared column class.
func convertValue(raw any, class typeClass) quality.Value {
	switch v := raw.(type) {
	case nil:
		return quality.Missing
	case int64:
		return quality.Int(v)
	case int32:
		return quality.Int(int64(v))
	case int16:
		return quality.Int(int64(v))
	case int8:
		return quality.Int(int64(v))
	case int:
		return quality.Int(int64(v))
	case uint64:
		return quality.Uint(v)
	case uint32:
		return quality.Int(int64(v))
	case uint16:
		return quality.Int(int64(v))
	case uint8:
		return quality.Int(int64(v))
	case float64:
		return quality.Number(v)
	case float32:
		return quality.Number(float64(v))
	case bool:
		return quality.Bool(v)
	case time.Time:
		return quality.Time(v)
	case string:
		return decodeText(v, class)
	case []byte:
		if class == classBinary || !utf8.Valid(v) {
			return quality.Bytes(v)
		}
		return decodeText(string(v), class)
	case fmt.Stringer:
		return decodeText(v.String(), class)
	}
	return quality.Text(fmt.Sprint(raw))
}

func decodeText(s string, class typeClass) quality.Value {
	switch class {
	case classNumber:
		if n, ok := parseNumber(s); ok {
			return n
		}
	case classTemporal:
		if t, ok := parseTimeMaybe(s); ok {
			return quality.Time(t)
		}
	case classBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "t":
			return quality.Bool(true)
		case "0", "false", "f":
			return quality.Bool(false)
		}
	}
	return quality.Text(s)
}

// parseNumber accepts integers and finite decimal or scientific notation,
// ignoring surrounding whitespace. Integers that fit 64 bits stay exact.
// "NaN" and "Inf" spellings stay text.
func parseNumber(s string) (quality.Value, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return quality.Missing, false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return quality.Int(i), true
	}
	if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return quality.Uint(u), true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return quality.Missing, false
	}
	return quality.Number(f), true
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano, "2006-01-02", "2006/01/02",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999",
		"15:04:05",
	}
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
