package quality

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	MissingValue ValueType = iota
	NumberValue
	TextValue
	BoolValue
	TimeValue
	BytesValue
)

func (t ValueType) String() string {
	switch t {
	case MissingValue:
		return "missing"
	case NumberValue:
		return "number"
	case TextValue:
		return "text"
	case BoolValue:
		return "bool"
	case TimeValue:
		return "time"
	case BytesValue:
		return "bytes"
	}
	return ""
}

// Value is a single cell of a snapshot. The zero Value is Missing, which is
// distinct from an empty Text value.
type Value struct {
	typ ValueType
	num float64
	ik  intKind
	i   int64
	u   uint64
	str string
	b   bool
	t   time.Time
}

// intKind records whether a number was built from an exact integer.
type intKind uint8

const (
	notInt intKind = iota
	signedInt
	unsignedInt
)

// Missing marks a cell with no recorded value.
var Missing = Value{}

// Number returns a numeric value. NaN and ±Inf are not real numbers and are
// stored as Missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Value{typ: NumberValue, num: f}
}

// Int returns a numeric value that keeps i exactly. Equality and uniqueness
// use the integer; statistics read the float64 approximation from Float.
func Int(i int64) Value {
	return Value{typ: NumberValue, num: float64(i), ik: signedInt, i: i}
}

// Uint is Int for unsigned integers.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Value{typ: NumberValue, num: float64(u), ik: unsignedInt, u: u}
}

// Text returns a character value. Text("") is a real, non-missing value.
func Text(s string) Value { return Value{typ: TextValue, str: s} }

func Bool(b bool) Value { return Value{typ: BoolValue, b: b} }

func Time(t time.Time) Value { return Value{typ: TimeValue, t: t} }

func Bytes(b []byte) Value { return Value{typ: BytesValue, str: string(b)} }

// Type reports the variant of v.
func (v Value) Type() ValueType { return v.typ }

func (v Value) IsMissing() bool { return v.typ == MissingValue }

// Float returns the number held by v; ok is false for every other variant.
func (v Value) Float() (float64, bool) {
	if v.typ != NumberValue {
		return 0, false
	}
	return v.num, true
}

// Str returns the text held by v; ok is false for every other variant.
func (v Value) Str() (string, bool) {
	if v.typ != TextValue {
		return "", false
	}
	return v.str, true
}

// Equal reports value equality without any normalization: texts differing
// only by case or whitespace are different values.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case MissingValue:
		return true
	case NumberValue:
		if v.ik == notInt && o.ik == notInt {
			return v.num == o.num
		}
		return v.numKey() == o.numKey()
	case TextValue, BytesValue:
		return v.str == o.str
	case BoolValue:
		return v.b == o.b
	case TimeValue:
		return v.t.Equal(o.t)
	}
	return false
}

// String renders v for previews and reports.
func (v Value) String() string {
	switch v.typ {
	case NumberValue:
		switch v.ik {
		case signedInt:
			return strconv.FormatInt(v.i, 10)
		case unsignedInt:
			return strconv.FormatUint(v.u, 10)
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case TextValue, BytesValue:
		return v.str
	case BoolValue:
		return strconv.FormatBool(v.b)
	case TimeValue:
		return v.t.Format(time.RFC3339Nano)
	}
	return ""
}

// key is a canonical encoding such that a.Equal(b) iff a.key() == b.key().
func (v Value) key() string {
	switch v.typ {
	case NumberValue:
		return "n" + v.numKey()
	case TextValue:
		return "t" + v.str
	case BytesValue:
		return "x" + v.str
	case BoolValue:
		if v.b {
			return "b1"
		}
		return "b0"
	case TimeValue:
		return "d" + v.t.UTC().Format(time.RFC3339Nano)
	}
	return "m"
}

// numKey spells a number canonically: integral values in the int64/uint64
// range as decimal integers, so Int(42) and Number(42) agree and -0 folds to
// "0"; everything else in shortest round-trip form.
func (v Value) numKey() string {
	switch v.ik {
	case signedInt:
		return strconv.FormatInt(v.i, 10)
	case unsignedInt:
		return strconv.FormatUint(v.u, 10)
	}
	f := v.num
	if f == math.Trunc(f) {
		switch {
		case f >= -(1<<63) && f < 1<<63:
			return strconv.FormatInt(int64(f), 10)
		case f >= 0 && f < 1<<64:
			return strconv.FormatUint(uint64(f), 10)
		}
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// rowKey encodes a whole row so that two rows share a key iff every cell is equal.
func rowKey(row []Value) string {
	var b strings.Builder
	for _, v := range row {
		k := v.key()
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}
