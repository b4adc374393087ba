package notify

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/dqmon-cli/internal/config"
)

// Build assembles the channels listed in c.AlertChannels. With no channel
// configured alerts go to the log.
func Build(c *config.Global, log logrus.FieldLogger) (Multi, error) {
	channels := c.AlertChannels
	if len(channels) == 0 {
		channels = []string{"log"}
	}
	m := Multi{}
	for _, ch := range channels {
		name := strings.ToLower(strings.TrimSpace(ch))
		switch name {
		case "log":
			m[name] = Log{Logger: log}
		case "smtp", "email":
			n, err := NewSMTP(SMTPConfig{
				Host:       c.SMTPHost,
				Port:       c.SMTPPort,
				Username:   c.SMTPUsername,
				Password:   c.SMTPPassword,
				From:       c.SMTPFrom,
				Recipients: c.AlertRecipients,
			})
			if err != nil {
				return nil, err
			}
			m["smtp"] = n
		case "telegram":
			n, err := NewTelegram(c.TelegramToken, c.TelegramChatID, nil)
			if err != nil {
				return nil, err
			}
			m[name] = n
		default:
			return nil, fmt.Errorf("unknown alert channel %q (want log, smtp or telegram)", ch)
		}
	}
	return m, nil
}
