package handlers

import (
	"github.com/Freeeeeet/streamer_booking/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки HTTP запросов
type Handlers struct {
	bookingService      *service.BookingService
	paymentService      *service.PaymentService
	voucherService      *service.VoucherService
	notificationService *service.NotificationService
	messagingService    *service.MessagingService
	linkService         *service.TelegramLinkService
	health              []HealthCheck
	logger              *zap.Logger
}

// NewHandlers создаёт обработчики
func NewHandlers(
	bookingService *service.BookingService,
	paymentService *service.PaymentService,
	voucherService *service.VoucherService,
	notificationService *service.NotificationService,
	messagingService *service.MessagingService,
	linkService *service.TelegramLinkService,
	health []HealthCheck,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		bookingService:      bookingService,
		paymentService:      paymentService,
		voucherService:      voucherService,
		notificationService: notificationService,
		messagingService:    messagingService,
		linkService:         linkService,
		health:              health,
		logger:              logger,
	}
}
