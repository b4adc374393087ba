package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"count": count,
	"pct":   pct,
}).Parse(`<html>
<body>
<h2>Data Quality Report - {{.P.TableName}}</h2>
<p><strong>Generated:</strong> {{.Generated}}</p>
<p><strong>Total Rows:</strong> {{count .P.TotalRows}}</p>

<h3>Data Quality Issues Summary</h3>
<ul>
  <li><strong>Duplicate Rows:</strong> {{count .P.Issues.DuplicateRowCount}}</li>
  <li><strong>Columns with Missing Values:</strong> {{len .P.Issues.MissingByColumn}}</li>
  <li><strong>Data Inconsistencies:</strong> {{len .P.Issues.Inconsistencies}}</li>
</ul>
{{- if .Eval.Critical}}

<h3>Alert Reasons</h3>
<ul>
{{- range .Eval.Reasons}}
  <li>{{if .Column}}<strong>{{.Column}}:</strong> {{end}}{{.Detail}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .P.Issues.MissingByColumn}}

<h3>Missing Values by Column</h3>
<ul>
{{- range .P.Issues.MissingByColumn}}
  <li><strong>{{.Column}}:</strong> {{count .Count}} ({{pct .Percentage}})</li>
{{- end}}
</ul>
{{- end}}
{{- if .P.Issues.Inconsistencies}}

<h3>Data Inconsistencies</h3>
<ul>
{{- range .P.Issues.Inconsistencies}}
  <li><strong>{{.Column}}:</strong> {{.Kind}} - {{.Count}} cases</li>
{{- end}}
</ul>
{{- end}}

<p>Please review the full profile for detailed analysis.</p>
</body>
</html>
`))

// HTML renders the alert email body for p. Table, column and example text is escaped.
func HTML(p *quality.TableProfile) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		P         *quality.TableProfile
		Generated string
		Eval      quality.Evaluation
	}{p, timestamp(p), quality.Evaluate(p)})
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
