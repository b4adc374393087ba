package source

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

func TestClassOf(t *testing.T) {
	tests := map[string]typeClass{
		"INT":              classNumber,
		"unsigned int":     classNumber,
		"DECIMAL(10,2)":    classNumber,
		"float8":           classNumber,
		"VARCHAR(255)":     classText,
		"nvarchar":         classText,
		"BYTEA":            classBinary,
		"timestamptz":      classTemporal,
		"DATETIME2":        classTemporal,
		"BIT":              classBool,
		"":                 classUnknown,
		"GEOMETRY":         classUnknown,
		"INTERVAL":         classUnknown,
		" char(3) ":        classText,
		"DOUBLE PRECISION": classNumber,
	}
	for in, want := range tests {
		assert.Equal(t, want, classOf(in), in)
	}
}

func TestConvertValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name  string
		raw   any
		class typeClass
		want  quality.Value
	}{
		{"nil", nil, classNumber, quality.Missing},
		{"int64", int64(7), classUnknown, quality.Number(7)},
		{"float", 2.5, classNumber, quality.Number(2.5)},
		{"decimal bytes", []byte("12.50"), classNumber, quality.Number(12.5)},
		{"bad decimal stays text", []byte("n/a"), classNumber, quality.Text("n/a")},
		{"varchar bytes", []byte(" Bob "), classText, quality.Text(" Bob ")},
		{"unknown bytes", []byte("abc"), classUnknown, quality.Text("abc")},
		{"blob", []byte("abc"), classBinary, quality.Bytes([]byte("abc"))},
		{"invalid utf8", []byte{0xff, 0xfe}, classText, quality.Bytes([]byte{0xff, 0xfe})},
		{"datetime bytes", []byte("2024-01-02 03:04:05"), classTemporal, quality.Time(ts)},
		{"time", ts, classTemporal, quality.Time(ts)},
		{"bit bytes", []byte("1"), classBool, quality.Bool(true)},
		{"bool", false, classBool, quality.Bool(false)},
		{"numeric string", "42", classNumber, quality.Number(42)},
		{"text string", "42", classText, quality.Text("42")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(convertValue(tt.raw, tt.class)), "got %v", convertValue(tt.raw, tt.class))
		})
	}
}

func TestConvertValue_LargeIntegersStayDistinct(t *testing.T) {
	a := convertValue(int64(9007199254740992), classNumber)
	b := convertValue(int64(9007199254740993), classNumber)
	assert.False(t, a.Equal(b))
	assert.Equal(t, "9007199254740993", b.String())

	// MySQL's text protocol hands BIGINT back as bytes.
	c := convertValue([]byte("9007199254740993"), classNumber)
	assert.True(t, b.Equal(c))
	assert.False(t, a.Equal(c))

	u := convertValue(uint64(18446744073709551615), classNumber)
	assert.Equal(t, "18446744073709551615", u.String())
	assert.False(t, u.Equal(convertValue(uint64(18446744073709551614), classNumber)))
}

func TestConvertValue_InfinityIsMissing(t *testing.T) {
	assert.True(t, convertValue(math.Inf(1), classNumber).IsMissing())
	assert.True(t, convertValue(float32(math.Inf(-1)), classNumber).IsMissing())
}

func TestParseNumber(t *testing.T) {
	for _, s := range []string{"1", " 2.5 ", "-3e2", "0", "9007199254740993", "18446744073709551615"} {
		_, ok := parseNumber(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"", "NaN", "inf", "1,000", "abc"} {
		_, ok := parseNumber(s)
		assert.False(t, ok, s)
	}
}
