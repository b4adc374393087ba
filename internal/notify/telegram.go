package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// Telegram messages are capped at 4096 characters.
const maxTelegramText = 4000

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a short summary to a chat and attaches the HTML report.
type Telegram struct {
	api    telegramSender
	chatID int64
}

// NewTelegram logs in with token. A nil client uses http.DefaultClient.
func NewTelegram(token string, chatID int64, client *http.Client) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram: token and chat id are required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, client)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, summary(a))); err != nil {
		return fmt.Errorf("telegram message: %w", err)
	}
	if a.HTMLBody == "" {
		return nil
	}
	name := a.Table + ".html"
	if a.Profile != nil && !a.Profile.GeneratedAt.IsZero() {
		name = a.Table + "-" + a.Profile.GeneratedAt.UTC().Format("20060102-150405") + ".html"
	}
	doc := tgbotapi.NewDocumentUpload(t.chatID, tgbotapi.FileBytes{Name: name, Bytes: []byte(a.HTMLBody)})
	if _, err := t.api.Send(doc); err != nil {
		return fmt.Errorf("telegram document: %w", err)
	}
	return nil
}

func summary(a Alert) string {
	text := a.Subject
	for _, r := range a.Reasons {
		line := r.Detail
		if r.Column != "" {
			line = r.Column + ": " + line
		}
		text += "\n• " + line
	}
	if runes := []rune(text); len(runes) > maxTelegramText {
		text = string(runes[:maxTelegramText]) + "…"
	}
	return text
}
