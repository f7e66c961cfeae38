package push

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Telegram отправляет текст уведомления в привязанный чат стримера
type Telegram struct {
	bot    *bot.Bot
	logger *zap.Logger
}

// NewTelegram оборачивает клиента Bot API. nil бот отключает push.
func NewTelegram(b *bot.Bot, logger *zap.Logger) *Telegram {
	if b == nil {
		logger.Info("Telegram push disabled")
	}
	return &Telegram{bot: b, logger: logger}
}

// Enabled сообщает, настроен ли бот
func (t *Telegram) Enabled() bool {
	return t.bot != nil
}

// Push отправляет сообщение в чат
func (t *Telegram) Push(ctx context.Context, chatID int64, text string) error {
	if t.bot == nil {
		return nil
	}

	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	t.logger.Debug("Telegram push sent", zap.Int64("chat_id", chatID))
	return nil
}
