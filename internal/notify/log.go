package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Log writes alerts to the process logger. It is the fallback channel when
// no external delivery is configured.
type Log struct {
	Logger logrus.FieldLogger
}

func (l Log) Notify(_ context.Context, a Alert) error {
	entry := l.Logger.WithField("table", a.Table)
	for _, r := range a.Reasons {
		entry.WithFields(logrus.Fields{"check": r.Check, "column": r.Column}).Warn(r.Detail)
	}
	entry.Warn(a.Subject)
	return nil
}
