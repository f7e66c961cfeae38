package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/streamer_booking/internal/formatting"
	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService struct {
	store     NotificationStore
	userRepo  UserStore
	publisher Publisher
	pusher    Pusher
	baseURL   string
	logger    *zap.Logger
}

// NewNotificationService создаёт сервис уведомлений. publisher и pusher могут быть nil.
func NewNotificationService(
	store NotificationStore,
	userRepo UserStore,
	publisher Publisher,
	pusher Pusher,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		store:     store,
		userRepo:  userRepo,
		publisher: publisher,
		pusher:    pusher,
		logger:    logger,
	}
}

// SetBaseURL задаёт адрес приложения для ссылок в уведомлениях
func (s *NotificationService) SetBaseURL(baseURL string) {
	s.baseURL = strings.TrimRight(baseURL, "/")
}

// Emit формирует текст по шаблону и сохраняет уведомление.
// Публикация в realtime и push в Telegram выполняются по возможности и не влияют на результат.
func (s *NotificationService) Emit(
	ctx context.Context,
	recipient model.Recipient,
	notificationType model.NotificationType,
	data TemplateData,
	bookingID *uuid.UUID,
) (*model.Notification, error) {
	message, err := renderNotification(notificationType, recipient.Role, data)
	if err != nil {
		return nil, err
	}

	n := &model.Notification{
		Type:      notificationType,
		Message:   message,
		BookingID: bookingID,
	}

	recipientID := recipient.ID
	switch recipient.Role {
	case model.RoleClient:
		n.UserID = &recipientID
	case model.RoleProvider:
		n.ProviderID = &recipientID
	default:
		return nil, fmt.Errorf("unknown recipient role %q", recipient.Role)
	}

	if err := s.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.logger.Debug("Notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", string(notificationType)),
		zap.String("role", string(recipient.Role)),
		zap.String("recipient_id", recipient.ID.String()),
	)

	s.publish(ctx, n, recipient)
	s.push(ctx, n, recipient)

	return n, nil
}

// EmitBookingEvent отправляет уведомление обеим сторонам бронирования.
// Возвращается только ошибка основного получателя; ошибка второй копии логируется.
func (s *NotificationService) EmitBookingEvent(
	ctx context.Context,
	booking *model.Booking,
	notificationType model.NotificationType,
	data TemplateData,
	primary model.RecipientRole,
) error {
	client := model.ClientRecipient(booking.ClientID)
	provider := model.ProviderRecipient(booking.ProviderID)

	first, second := client, provider
	if primary == model.RoleProvider {
		first, second = provider, client
	}

	bookingID := booking.ID

	if _, err := s.Emit(ctx, first, notificationType, data, &bookingID); err != nil {
		s.logger.Error("Failed to emit primary notification",
			zap.String("booking_id", booking.ID.String()),
			zap.String("type", string(notificationType)),
			zap.String("role", string(first.Role)),
			zap.Error(err),
		)
		return fmt.Errorf("emit %s notification: %w", notificationType, err)
	}

	if _, err := s.Emit(ctx, second, notificationType, data, &bookingID); err != nil {
		s.logger.Warn("Failed to emit secondary notification",
			zap.String("booking_id", booking.ID.String()),
			zap.String("type", string(notificationType)),
			zap.String("role", string(second.Role)),
			zap.Error(err),
		)
	}

	return nil
}

// BookingData собирает данные шаблона для бронирования.
// Ошибки поиска имён не фатальны: поле просто останется пустым.
func (s *NotificationService) BookingData(ctx context.Context, booking *model.Booking) TemplateData {
	data := TemplateData{
		Schedule: formatting.FormatDateTime(booking.StartTime) + " (" + formatting.FormatDuration(booking.Duration()) + ")",
		Platform: booking.Platform,
		Price:    formatting.FormatRupiah(booking.Price),
	}

	if s.baseURL != "" {
		data.Link = s.baseURL + "/bookings/" + booking.ID.String()
	}
	if booking.RequestedStartTime != nil && booking.RequestedEndTime != nil {
		data.NewSchedule = formatting.FormatDate(*booking.RequestedStartTime) + " " +
			formatting.FormatTimeRange(*booking.RequestedStartTime, *booking.RequestedEndTime)
	}
	if booking.Reason != nil {
		data.Reason = *booking.Reason
	}

	if s.userRepo == nil {
		return data
	}

	if client, err := s.userRepo.GetProfile(ctx, booking.ClientID); err != nil {
		s.logger.Warn("Failed to load client for notification", zap.String("booking_id", booking.ID.String()), zap.Error(err))
	} else if client != nil {
		data.ClientName = client.FullName
	}

	provider := booking.Provider
	if provider == nil {
		p, err := s.userRepo.GetProvider(ctx, booking.ProviderID)
		if err != nil {
			s.logger.Warn("Failed to load provider for notification", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
		provider = p
	}
	if provider != nil {
		data.ProviderName = provider.DisplayName
	}

	return data
}

// RecipientFor определяет адресата для пользователя: клиент или его профиль стримера
func (s *NotificationService) RecipientFor(ctx context.Context, userID uuid.UUID, role model.RecipientRole) (model.Recipient, error) {
	switch role {
	case model.RoleClient, "":
		return model.ClientRecipient(userID), nil
	case model.RoleProvider:
		provider, err := s.userRepo.GetProviderByUserID(ctx, userID)
		if err != nil {
			return model.Recipient{}, fmt.Errorf("get provider: %w", err)
		}
		if provider == nil {
			return model.Recipient{}, ErrProviderNotFound
		}
		return model.ProviderRecipient(provider.ID), nil
	default:
		return model.Recipient{}, fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, role)
	}
}

// List получает уведомления адресата
func (s *NotificationService) List(ctx context.Context, recipient model.Recipient, onlyUnread bool) ([]*model.Notification, error) {
	notifications, err := s.store.ListByRecipient(ctx, recipient, onlyUnread)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead отмечает уведомление прочитанным
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, recipient model.Recipient) error {
	ok, err := s.store.MarkRead(ctx, id, recipient)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// NotificationTopic канал realtime для адресата
func NotificationTopic(recipient model.Recipient) string {
	return "notification." + string(recipient.Role) + "." + recipient.ID.String()
}

func (s *NotificationService) publish(ctx context.Context, n *model.Notification, recipient model.Recipient) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, NotificationTopic(recipient), n); err != nil {
		s.logger.Warn("Failed to publish notification",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) push(ctx context.Context, n *model.Notification, recipient model.Recipient) {
	if s.pusher == nil || recipient.Role != model.RoleProvider || s.userRepo == nil {
		return
	}

	provider, err := s.userRepo.GetProvider(ctx, recipient.ID)
	if err != nil || provider == nil || provider.TelegramChatID == nil {
		return
	}

	if err := s.pusher.Push(ctx, *provider.TelegramChatID, n.Message); err != nil {
		s.logger.Warn("Failed to push notification to telegram",
			zap.String("notification_id", n.ID.String()),
			zap.String("provider_id", recipient.ID.String()),
			zap.Error(err),
		)
	}
}
