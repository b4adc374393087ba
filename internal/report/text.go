package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// Text renders p for a terminal.
func Text(p *quality.TableProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Data quality profile: %s\n", p.TableName)
	fmt.Fprintf(&b, "Generated: %s  Rows: %s  Columns: %d\n", timestamp(p), count(p.TotalRows), p.TotalColumns)

	ev := quality.Evaluate(p)
	if ev.Critical {
		b.WriteString("Status: CRITICAL\n")
		for _, r := range ev.Reasons {
			fmt.Fprintf(&b, "  - %s\n", reasonLine(r))
		}
	} else {
		b.WriteString("Status: OK\n")
	}

	b.WriteString("\nColumns\n")
	b.WriteString(columnsTable(p))
	b.WriteString("\n")

	fmt.Fprintf(&b, "\nDuplicate rows: %s\n", count(p.Issues.DuplicateRowCount))
	if len(p.Issues.MissingByColumn) > 0 {
		t := newTable()
		t.AppendHeader(table.Row{"Column", "Missing", "Missing %"})
		for _, e := range p.Issues.MissingByColumn {
			t.AppendRow(table.Row{e.Column, count(e.Count), pct(e.Percentage)})
		}
		b.WriteString("\nMissing values\n")
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	if len(p.Issues.Inconsistencies) > 0 {
		t := newTable()
		t.AppendHeader(table.Row{"Column", "Issue", "Count", "Examples"})
		for _, inc := range p.Issues.Inconsistencies {
			t.AppendRow(table.Row{inc.Column, string(inc.Kind), inc.Count, quoteAll(inc.Examples)})
		}
		b.WriteString("\nInconsistencies\n")
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	return b.String()
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	return t
}

func columnsTable(p *quality.TableProfile) string {
	t := newTable()
	t.AppendHeader(table.Row{"Column", "Type", "Unique", "Missing", "Min", "Max", "Mean", "Std Dev", "Outliers", "Avg Len", "Len Range"})
	for _, name := range p.Columns.Names() {
		c, _ := p.Columns.Get(name)
		row := table.Row{name, c.DataType.String(), c.UniqueCount, fmt.Sprintf("%d (%s)", c.MissingCount, pct(c.MissingPercentage))}
		switch {
		case c.Numeric != nil:
			n := c.Numeric
			row = append(row, optFloat(n.Min), optFloat(n.Max), optFloat(n.Mean), optFloat(n.StdDev), n.Outliers.Count, "-", "-")
		case c.Textual != nil:
			s := c.Textual
			row = append(row, "-", "-", "-", "-", "-", optFloat(s.AvgLength), optInt(s.MinLength)+".."+optInt(s.MaxLength))
		default:
			row = append(row, "-", "-", "-", "-", "-", "-", "-")
		}
		t.AppendRow(row)
	}
	return t.Render()
}

// quoteAll shows examples quoted so padding stays visible.
func quoteAll(examples []string) string {
	q := make([]string, len(examples))
	for i, ex := range examples {
		q[i] = fmt.Sprintf("%q", ex)
	}
	return strings.Join(q, ", ")
}
