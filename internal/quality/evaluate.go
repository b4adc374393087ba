package quality

import "fmt"

// Alerting thresholds.
const (
	DuplicateRatioThreshold    = 0.05
	MissingPercentageThreshold = 20.0
	MaxInconsistencies         = 3
)

// Check identifies an alerting rule.
type Check string

const (
	CheckDuplicates      Check = "duplicates"
	CheckMissingValues   Check = "missing_values"
	CheckInconsistencies Check = "inconsistencies"
)

// Reason describes one satisfied alerting rule.
type Reason struct {
	Check  Check  `json:"check"`
	Column string `json:"column,omitempty"`
	Detail string `json:"detail"`
}

// Evaluation is the outcome of applying the thresholds to a profile.
type Evaluation struct {
	Critical bool     `json:"critical"`
	Reasons  []Reason `json:"reasons"`
}

// IsCritical reports whether p crosses any alerting threshold. Rules are
// checked in order (duplicates, missing values, inconsistencies) and the
// first match decides.
func IsCritical(p *TableProfile) bool {
	if p == nil {
		return false
	}
	if duplicatesCritical(p) {
		return true
	}
	for _, e := range p.Issues.MissingByColumn {
		if e.Percentage > MissingPercentageThreshold {
			return true
		}
	}
	return len(p.Issues.Inconsistencies) > MaxInconsistencies
}

// Evaluate applies every rule and lists the satisfied ones in rule order.
// Critical always agrees with IsCritical.
func Evaluate(p *TableProfile) Evaluation {
	ev := Evaluation{Reasons: []Reason{}}
	if p == nil {
		return ev
	}
	if duplicatesCritical(p) {
		ev.Reasons = append(ev.Reasons, Reason{
			Check:  CheckDuplicates,
			Detail: fmt.Sprintf("%d duplicate rows exceed %.0f%% of %d rows", p.Issues.DuplicateRowCount, DuplicateRatioThreshold*100, p.TotalRows),
		})
	}
	for _, e := range p.Issues.MissingByColumn {
		if e.Percentage > MissingPercentageThreshold {
			ev.Reasons = append(ev.Reasons, Reason{
				Check:  CheckMissingValues,
				Column: e.Column,
				Detail: fmt.Sprintf("%.2f%% missing exceeds %.0f%%", e.Percentage, MissingPercentageThreshold),
			})
		}
	}
	if n := len(p.Issues.Inconsistencies); n > MaxInconsistencies {
		ev.Reasons = append(ev.Reasons, Reason{
			Check:  CheckInconsistencies,
			Detail: fmt.Sprintf("%d inconsistencies exceed %d", n, MaxInconsistencies),
		})
	}
	ev.Critical = len(ev.Reasons) > 0
	return ev
}

func duplicatesCritical(p *TableProfile) bool {
	if p.TotalRows == 0 {
		return false
	}
	return float64(p.Issues.DuplicateRowCount) > float64(p.TotalRows)*DuplicateRatioThreshold
}
