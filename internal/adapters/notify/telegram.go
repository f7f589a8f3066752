package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/harilal/tradetoggle/internal/ports"
)

// Telegram delivers run reports to a single chat. Messages use HTML
// parse mode, matching the report formatter.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ ports.Notifier = (*Telegram)(nil)

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Send(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Discard is used when Telegram credentials are not configured; runs
// proceed with log-only reporting.
type Discard struct{}

var _ ports.Notifier = Discard{}

func (Discard) Send(_ context.Context, text string) error {
	log.Debug().Str("text", text).Msg("notifier not configured, report dropped")
	return nil
}
