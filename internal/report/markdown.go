package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// Markdown renders p as bracketed sections suitable for pasting into notes or tickets.
func Markdown(p *quality.TableProfile) string {
	var b strings.Builder
	b.WriteString("[TABLE SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Table: %s\n", safeName(p.TableName)))
	b.WriteString(fmt.Sprintf("Generated: %s\n", timestamp(p)))
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.TotalRows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", p.TotalColumns))

	b.WriteString("[SCHEMA]\n")
	for _, name := range p.Columns.Names() {
		c, _ := p.Columns.Get(name)
		b.WriteString(fmt.Sprintf("- %s: %s (unique %d, missing %d / %s)", safeName(name), c.DataType, c.UniqueCount, c.MissingCount, pct(c.MissingPercentage)))
		switch {
		case c.Numeric != nil:
			n := c.Numeric
			b.WriteString(fmt.Sprintf(": min %s, max %s, mean %s, std %s", optFloat(n.Min), optFloat(n.Max), optFloat(n.Mean), optFloat(n.StdDev)))
			if n.Outliers.Count > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d outside [%s, %s]", n.Outliers.Count, optFloat(n.Outliers.LowerBound), optFloat(n.Outliers.UpperBound)))
			}
		case c.Textual != nil:
			s := c.Textual
			b.WriteString(fmt.Sprintf(": length avg %s, min %s, max %s", optFloat(s.AvgLength), optInt(s.MinLength), optInt(s.MaxLength)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[DATA QUALITY ISSUES]\n")
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n", p.Issues.DuplicateRowCount))
	if len(p.Issues.MissingByColumn) == 0 {
		b.WriteString("Missing values: none\n")
	} else {
		b.WriteString("Missing values:\n")
		for _, e := range p.Issues.MissingByColumn {
			b.WriteString(fmt.Sprintf("- %s: %d (%s)\n", safeName(e.Column), e.Count, pct(e.Percentage)))
		}
	}
	if len(p.Issues.Inconsistencies) == 0 {
		b.WriteString("Inconsistencies: none\n")
	} else {
		b.WriteString("Inconsistencies:\n")
		for _, inc := range p.Issues.Inconsistencies {
			b.WriteString(fmt.Sprintf("- %s: %s, %d cases", safeName(inc.Column), inc.Kind, inc.Count))
			if len(inc.Examples) > 0 {
				b.WriteString(" (e.g., " + safeVal(quoteAll(inc.Examples)) + ")")
			}
			b.WriteString("\n")
		}
	}

	ev := quality.Evaluate(p)
	b.WriteString("\n[STATUS]\n")
	if !ev.Critical {
		b.WriteString("OK\n")
		return b.String()
	}
	b.WriteString("CRITICAL\n")
	for _, r := range ev.Reasons {
		b.WriteString("- " + reasonLine(r) + "\n")
	}
	return b.String()
}

func safeName(s string) string {
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
