package controller

import (
	"github.com/Freeeeeet/streamer_booking/internal/controller/handlers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig параметры HTTP слоя
type RouterConfig struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Production     bool
}

// NewRouter собирает gin engine со всеми маршрутами API.
// bot может быть nil, тогда маршрут Telegram webhook не регистрируется.
func NewRouter(cfg RouterConfig, h *handlers.Handlers, bot *BotController, logger *zap.Logger) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), handlers.AccessLog(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", h.Health)

	// Вызывается платёжным шлюзом, аутентификация по подписи
	r.POST("/payment-webhook", h.PaymentWebhook)

	if bot != nil {
		r.POST("/telegram/webhook", gin.WrapH(bot.WebhookHandler()))
	}

	protected := r.Group("/")
	protected.Use(handlers.Auth(cfg.JWTSecret))
	{
		payments := protected.Group("/payments")
		{
			payments.POST("/create", h.CreatePayment)
			payments.POST("/callback", h.PaymentCallback)
		}

		bookings := protected.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.POST("/:id/accept", h.AcceptBooking)
			bookings.POST("/:id/reject", h.RejectBooking)
			bookings.POST("/:id/cancel", h.CancelBooking)
			bookings.POST("/:id/reschedule", h.RescheduleBooking)
			bookings.POST("/:id/reschedule/respond", h.RespondReschedule)
			bookings.POST("/:id/complete", h.CompleteBooking)
			bookings.POST("/:id/rating", h.RateBooking)
			bookings.POST("/:id/items-received", h.MarkItemsReceived)
		}

		protected.POST("/vouchers/validate", h.ValidateVoucher)

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("/:id/read", h.MarkNotificationRead)
		}

		conversations := protected.Group("/conversations")
		{
			conversations.POST("", h.StartConversation)
			conversations.GET("/:id/messages", h.ListMessages)
			conversations.POST("/:id/messages", h.SendMessage)
			conversations.POST("/:id/read", h.MarkConversationRead)
		}

		protected.POST("/providers/me/telegram-link", h.IssueTelegramLink)
	}

	return r
}
