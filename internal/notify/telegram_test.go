package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramSendsSummaryAndReport(t *testing.T) {
	p, ev := criticalProfile(t, "users")
	a, err := NewAlert(p, ev)
	require.NoError(t, err)

	bot := &fakeBot{}
	tg := &Telegram{api: bot, chatID: 42}
	require.NoError(t, tg.Notify(context.Background(), a))
	require.Len(t, bot.sent, 2)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.True(t, strings.HasPrefix(msg.Text, "Data Quality Alert - users\n• "))

	doc, ok := bot.sent[1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "users-20240102-030405.html", file.Name)
	assert.Equal(t, a.HTMLBody, string(file.Bytes))
}

func TestTelegramStopsOnMessageFailure(t *testing.T) {
	bot := &fakeBot{err: errors.New("chat not found")}
	tg := &Telegram{api: bot, chatID: 1}
	err := tg.Notify(context.Background(), Alert{Subject: "s", HTMLBody: "<p/>"})
	assert.ErrorContains(t, err, "chat not found")
	assert.Len(t, bot.sent, 1)
}

func TestSummaryIsTruncated(t *testing.T) {
	s := summary(Alert{Subject: strings.Repeat("é", maxTelegramText+10)})
	assert.Equal(t, maxTelegramText+1, len([]rune(s)))
}
