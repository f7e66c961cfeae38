package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/streamer_booking/internal/contentfilter"
	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxMessageLength    = 2000
	messagePreviewRunes = 80

	defaultMessagesLimit = 50
	maxMessagesLimit     = 200
)

type MessagingService struct {
	conversationRepo ConversationStore
	userRepo         UserStore
	notifications    *NotificationService
	logger           *zap.Logger
}

func NewMessagingService(
	conversationRepo ConversationStore,
	userRepo UserStore,
	notifications *NotificationService,
	logger *zap.Logger,
) *MessagingService {
	return &MessagingService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		notifications:    notifications,
		logger:           logger,
	}
}

// StartConversation возвращает диалог клиента со стримером, создавая его один раз на пару
func (s *MessagingService) StartConversation(ctx context.Context, clientUserID, providerID uuid.UUID) (*model.Conversation, error) {
	provider, err := s.userRepo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	if provider.UserID == clientUserID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", ErrInvalidRequest)
	}

	conversation, err := s.conversationRepo.GetOrCreate(ctx, clientUserID, providerID)
	if err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}

	return conversation, nil
}

// SendMessage проверяет текст фильтром и только потом сохраняет сообщение.
// Второй участник получает ровно одно уведомление new_message.
func (s *MessagingService) SendMessage(ctx context.Context, conversationID, senderUserID uuid.UUID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidRequest)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message is too long", ErrInvalidRequest)
	}

	conversation, recipient, senderName, err := s.participant(ctx, conversationID, senderUserID)
	if err != nil {
		return nil, err
	}

	if rule, ok := contentfilter.Check(content); !ok {
		s.logger.Info("Message rejected by content filter",
			zap.String("conversation_id", conversationID.String()),
			zap.String("sender_id", senderUserID.String()),
			zap.String("rule", string(rule)),
		)
		return nil, fmt.Errorf("%w: %s", ErrForbiddenContent, rule)
	}

	message := &model.Message{
		ConversationID: conversation.ID,
		SenderID:       senderUserID,
		Content:        content,
	}

	if err := s.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	data := TemplateData{
		SenderName: senderName,
		Preview:    preview(content),
	}

	if _, err := s.notifications.Emit(ctx, recipient, model.NotificationNewMessage, data, nil); err != nil {
		s.logger.Warn("Failed to notify about new message",
			zap.String("message_id", message.ID.String()),
			zap.Error(err),
		)
	}

	return message, nil
}

// ListMessages последние сообщения диалога для участника
func (s *MessagingService) ListMessages(ctx context.Context, conversationID, viewerUserID uuid.UUID, limit int) ([]*model.Message, error) {
	if _, _, _, err := s.participant(ctx, conversationID, viewerUserID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessagesLimit
	}
	limit = min(limit, maxMessagesLimit)

	messages, err := s.conversationRepo.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}

// MarkConversationRead отмечает прочитанными входящие сообщения
func (s *MessagingService) MarkConversationRead(ctx context.Context, conversationID, viewerUserID uuid.UUID) (int64, error) {
	if _, _, _, err := s.participant(ctx, conversationID, viewerUserID); err != nil {
		return 0, err
	}

	count, err := s.conversationRepo.MarkMessagesRead(ctx, conversationID, viewerUserID)
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}

	return count, nil
}

// participant проверяет, что пользователь участвует в диалоге, и возвращает второго участника
func (s *MessagingService) participant(ctx context.Context, conversationID, userID uuid.UUID) (*model.Conversation, model.Recipient, string, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, model.Recipient{}, "", fmt.Errorf("get conversation: %w", err)
	}
	if conversation == nil {
		return nil, model.Recipient{}, "", ErrConversationNotFound
	}

	if conversation.ClientID == userID {
		name := ""
		if profile, err := s.userRepo.GetProfile(ctx, userID); err == nil && profile != nil {
			name = profile.FullName
		}
		return conversation, model.ProviderRecipient(conversation.ProviderID), name, nil
	}

	provider, err := s.userRepo.GetProviderByUserID(ctx, userID)
	if err != nil {
		return nil, model.Recipient{}, "", fmt.Errorf("get provider: %w", err)
	}
	if provider != nil && provider.ID == conversation.ProviderID {
		return conversation, model.ClientRecipient(conversation.ClientID), provider.DisplayName, nil
	}

	return nil, model.Recipient{}, "", ErrForbidden
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= messagePreviewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:messagePreviewRunes]) + "…"
}
