// Package notify delivers data quality alerts over email, Telegram and the log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
	"github.com/KaramelBytes/dqmon-cli/internal/report"
)

// ErrSuppressed is returned by Cooldown when an alert for the same table was
// delivered within the cooldown period.
var ErrSuppressed = errors.New("alert suppressed by cooldown")

// Notifier delivers an alert to one or more recipients.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Alert is one rendered notification about a critical table.
type Alert struct {
	Table    string
	Subject  string
	Body     string // plain text
	HTMLBody string
	Profile  *quality.TableProfile
	Reasons  []quality.Reason
}

// NewAlert renders the alert for p. Subject is "Data Quality Alert - <table>".
func NewAlert(p *quality.TableProfile, ev quality.Evaluation) (Alert, error) {
	if p == nil {
		return Alert{}, errors.New("new alert: nil profile")
	}
	html, err := report.HTML(p)
	if err != nil {
		return Alert{}, err
	}
	return Alert{
		Table:    p.TableName,
		Subject:  "Data Quality Alert - " + p.TableName,
		Body:     report.Text(p),
		HTMLBody: html,
		Profile:  p,
		Reasons:  ev.Reasons,
	}, nil
}

// DeliveryError reports a failure of a single channel.
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Multi fans an alert out to every channel and joins the failures.
type Multi map[string]Notifier

func (m Multi) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, name := range m.names() {
		if err := m[name].Notify(ctx, a); err != nil {
			errs = append(errs, &DeliveryError{Channel: name, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (m Multi) names() []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
