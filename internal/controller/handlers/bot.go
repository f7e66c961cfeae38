package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/streamer_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// BotHandlers команды Telegram бота для привязки чата стримера
type BotHandlers struct {
	linkService *service.TelegramLinkService
	logger      *zap.Logger
}

func NewBotHandlers(linkService *service.TelegramLinkService, logger *zap.Logger) *BotHandlers {
	return &BotHandlers{
		linkService: linkService,
		logger:      logger,
	}
}

// HandleStart обрабатывает /start <код>: код выдаётся стримеру в приложении
func (h *BotHandlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	code := startPayload(update.Message.Text)
	if code == "" {
		h.sendMessage(ctx, b, chatID, "👋 Halo! Buka menu Notifikasi di aplikasi dan tekan \"Hubungkan Telegram\" untuk menerima pemberitahuan booking di sini.")
		return
	}

	provider, err := h.linkService.ConfirmLink(ctx, code, chatID)
	if err != nil {
		if errors.Is(err, service.ErrLinkCodeInvalid) {
			h.sendMessage(ctx, b, chatID, "❌ Kode tidak valid atau sudah kedaluwarsa. Buat kode baru di aplikasi.")
			return
		}
		h.logger.Error("Failed to link telegram chat", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ Terjadi kesalahan. Coba lagi nanti.")
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Terhubung sebagai %s. Notifikasi booking akan dikirim ke chat ini.\n\n/stop - berhenti menerima notifikasi", provider.DisplayName))
}

// HandleStop отключает уведомления в этот чат
func (h *BotHandlers) HandleStop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	unlinked, err := h.linkService.Unlink(ctx, chatID)
	if err != nil {
		h.logger.Error("Failed to unlink telegram chat", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ Terjadi kesalahan. Coba lagi nanti.")
		return
	}

	if !unlinked {
		h.sendMessage(ctx, b, chatID, "Chat ini belum terhubung dengan akun streamer.")
		return
	}

	h.sendMessage(ctx, b, chatID, "🔕 Notifikasi dihentikan.")
}

// HandleHelp обрабатывает команду /help
func (h *BotHandlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Perintah:\n\n" +
		"/start <kode> - hubungkan chat dengan akun streamer\n" +
		"/stop - berhenti menerima notifikasi\n" +
		"/help - tampilkan bantuan ini"

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *BotHandlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// startPayload достаёт параметр из "/start <payload>"
func startPayload(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
