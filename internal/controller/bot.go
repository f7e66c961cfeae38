package controller

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/streamer_booking/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// BotController принимает обновления Telegram через webhook
type BotController struct {
	bot      *bot.Bot
	handlers *handlers.BotHandlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	botHandlers *handlers.BotHandlers,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: botHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stop", bot.MatchTypeExact, c.handlers.HandleStop)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🔗 Hubungkan akun streamer"},
		{Command: "stop", Description: "🔕 Berhenti menerima notifikasi"},
		{Command: "help", Description: "❓ Bantuan"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// WebhookHandler принимает обновления от Telegram
func (c *BotController) WebhookHandler() http.Handler {
	return c.bot.WebhookHandler()
}

// Start запускает обработку обновлений, пришедших через webhook; блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting telegram webhook processing")
	c.bot.StartWebhook(ctx)
}
