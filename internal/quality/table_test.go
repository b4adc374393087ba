package quality

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

func testOptions(parallelism int) Options {
	return Options{Parallelism: parallelism, Now: fixedNow}
}

// employees mirrors a small customer table with the usual defects: one
// duplicated row, scattered missing values, sloppy names and a salary outlier.
func employees(t *testing.T) *Snapshot {
	t.Helper()
	row := func(id float64, name, email Value, age Value, salary float64) []Value {
		return []Value{Number(id), name, email, age, Number(salary)}
	}
	s, err := NewSnapshot(NamedColumns("id", "name", "email", "age", "salary"), [][]Value{
		row(1, Text("John Doe"), Text("john@email.com"), Number(25), 50000),
		row(2, Text("jane smith"), Text("jane@email.com"), Number(30), 60000),
		row(3, Text("Bob Johnson "), Text("bob@email.com"), Number(35), 70000),
		row(4, Missing, Text("missing@email.com"), Number(40), 80000),
		row(5, Text("Alice Brown"), Text("alice@email.com"), Number(28), 55000),
		row(5, Text("Alice Brown"), Text("alice@email.com"), Number(28), 55000),
		row(7, Text("Charlie Wilson"), Text("charlie@email.com"), Number(45), 90000),
		row(8, Text("diana prince"), Text("diana@email.com"), Number(32), 65000),
		row(9, Text("Eve Adams"), Missing, Number(29), 58000),
		row(10, Text("Frank Miller"), Text("frank@email.com"), Missing, 1000000),
	})
	require.NoError(t, err)
	return s
}

func TestProfileTable_Employees(t *testing.T) {
	p, err := ProfileTable(context.Background(), employees(t), "employees", testOptions(4))
	require.NoError(t, err)

	assert.Equal(t, "employees", p.TableName)
	assert.Equal(t, fixedNow(), p.GeneratedAt)
	assert.Equal(t, 10, p.TotalRows)
	assert.Equal(t, 5, p.TotalColumns)
	assert.Equal(t, []string{"id", "name", "email", "age", "salary"}, p.Columns.Names())

	id, ok := p.Columns.Get("id")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, id.DataType)
	assert.Equal(t, 9, id.UniqueCount)

	name, _ := p.Columns.Get("name")
	assert.Equal(t, KindTextual, name.DataType)
	assert.Equal(t, 1, name.MissingCount)
	assert.Equal(t, 10.0, name.MissingPercentage)

	salary, _ := p.Columns.Get("salary")
	require.NotNil(t, salary.Numeric)
	assert.Equal(t, 1, salary.Numeric.Outliers.Count)
	assert.Equal(t, []float64{1000000}, salary.Numeric.Outliers.SampleValues)

	assert.Equal(t, MissingByColumn{
		{Column: "name", Count: 1, Percentage: 10},
		{Column: "email", Count: 1, Percentage: 10},
		{Column: "age", Count: 1, Percentage: 10},
	}, p.Issues.MissingByColumn)
	assert.Equal(t, 1, p.Issues.DuplicateRowCount)
	assert.Equal(t, []Inconsistency{
		{Column: "name", Kind: MixedCase, Count: 7, Examples: []string{"John Doe", "Bob Johnson ", "Alice Brown", "Alice Brown", "Charlie Wilson"}},
		{Column: "name", Kind: Whitespace, Count: 1, Examples: []string{"Bob Johnson "}},
	}, p.Issues.Inconsistencies)

	assert.True(t, IsCritical(p))
}

func TestProfileTable_MissingCountsMatchSentinels(t *testing.T) {
	s := employees(t)
	p, err := ProfileTable(context.Background(), s, "employees", testOptions(1))
	require.NoError(t, err)

	sentinels := 0
	for i := 0; i < s.NumRows(); i++ {
		for _, v := range s.Row(i) {
			if v.IsMissing() {
				sentinels++
			}
		}
	}
	total := 0
	for _, n := range p.Columns.Names() {
		cp, _ := p.Columns.Get(n)
		total += cp.MissingCount
		assert.Equal(t, p.TotalRows, cp.MissingCount+len(nonMissing(s, n)))
	}
	assert.Equal(t, sentinels, total)
}

func nonMissing(s *Snapshot, column string) []Value {
	var out []Value
	for j, c := range s.Columns() {
		if c.Name != column {
			continue
		}
		for _, v := range s.Column(j) {
			if !v.IsMissing() {
				out = append(out, v)
			}
		}
	}
	return out
}

func TestCountDuplicateRows(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		rows := make([][]Value, n)
		for i := range rows {
			rows[i] = []Value{Text("x"), Missing, Number(1)}
		}
		s, err := NewSnapshot(NamedColumns("a", "b", "c"), rows)
		require.NoError(t, err)
		assert.Equal(t, n-1, CountDuplicateRows(s))
	}

	s, err := NewSnapshot(NamedColumns("a", "b"), [][]Value{
		{Text("x"), Text("y")},
		{Text("x"), Text("Y")},
		{Text("xy"), Text("")},
		{Text("x"), Text("y")},
		{Text("1"), Missing},
		{Number(1), Missing},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, CountDuplicateRows(s))
}

func TestProfileTable_EmptyTable(t *testing.T) {
	s, err := NewSnapshot([]Column{{Name: "n", Declared: KindNumeric}, {Name: "t"}}, nil)
	require.NoError(t, err)

	p, err := ProfileTable(context.Background(), s, "empty", testOptions(2))
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalRows)
	assert.Equal(t, 2, p.TotalColumns)
	assert.Empty(t, p.Issues.MissingByColumn)
	assert.Equal(t, 0, p.Issues.DuplicateRowCount)
	assert.Empty(t, p.Issues.Inconsistencies)

	n, _ := p.Columns.Get("n")
	assert.Equal(t, KindNumeric, n.DataType)
	assert.Equal(t, 0.0, n.MissingPercentage)
	require.NotNil(t, n.Numeric)
	assert.Nil(t, n.Numeric.Mean)

	tc, _ := p.Columns.Get("t")
	assert.Equal(t, KindOther, tc.DataType)
	assert.False(t, IsCritical(p))
}

func TestProfileTable_Deterministic(t *testing.T) {
	s := employees(t)
	a, err := ProfileTable(context.Background(), s, "employees", testOptions(1))
	require.NoError(t, err)
	b, err := ProfileTable(context.Background(), s, "employees", testOptions(8))
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestProfileTable_JSONKeepsColumnOrder(t *testing.T) {
	p, err := ProfileTable(context.Background(), employees(t), "employees", testOptions(2))
	require.NoError(t, err)
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var back TableProfile
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p.Columns.Names(), back.Columns.Names())
	assert.Equal(t, p.Issues.MissingByColumn, back.Issues.MissingByColumn)
	name, ok := back.Columns.Get("name")
	require.True(t, ok)
	assert.Equal(t, KindTextual, name.DataType)
}

func TestProfileTable_ContractViolations(t *testing.T) {
	_, err := ProfileTable(context.Background(), nil, "x", testOptions(1))
	assert.ErrorIs(t, err, ErrNilSnapshot)

	_, err = NewSnapshot(NamedColumns("a", "b"), [][]Value{{Number(1), Number(2)}, {Number(1)}})
	assert.ErrorIs(t, err, ErrRowWidth)

	_, err = NewSnapshot(NamedColumns("a", "a"), nil)
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestProfileTable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := ProfileTable(ctx, employees(t), "employees", testOptions(2))
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewSnapshot_CopiesInput(t *testing.T) {
	rows := [][]Value{{Text("a")}}
	s, err := NewSnapshot(NamedColumns("c"), rows)
	require.NoError(t, err)
	rows[0][0] = Text("changed")
	assert.Equal(t, Text("a"), s.Row(0)[0])
}

func TestProfileTable_LargeIntegerIDsAreNotDuplicates(t *testing.T) {
	s, err := NewSnapshot(NamedColumns("id"), [][]Value{
		{Int(9007199254740992)},
		{Int(9007199254740993)},
	})
	require.NoError(t, err)

	p, err := ProfileTable(context.Background(), s, "events", testOptions(1))
	require.NoError(t, err)
	id, _ := p.Columns.Get("id")
	assert.Equal(t, 2, id.UniqueCount)
	assert.Equal(t, 0, p.Issues.DuplicateRowCount)
	assert.False(t, IsCritical(p))
}
