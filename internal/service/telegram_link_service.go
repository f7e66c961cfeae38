package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLinkCodeTTL время жизни кода привязки
const DefaultLinkCodeTTL = 15 * time.Minute

// TelegramLink код и deep link для привязки чата
type TelegramLink struct {
	Code      string    `json:"code"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TelegramLinkService struct {
	userRepo    TelegramLinkStore
	codes       LinkCodeStore
	botUsername string
	codeTTL     time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewTelegramLinkService(
	userRepo TelegramLinkStore,
	codes LinkCodeStore,
	botUsername string,
	logger *zap.Logger,
) *TelegramLinkService {
	return &TelegramLinkService{
		userRepo:    userRepo,
		codes:       codes,
		botUsername: strings.TrimPrefix(botUsername, "@"),
		codeTTL:     DefaultLinkCodeTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// IssueLink выдаёт стримеру одноразовый код для команды /start
func (s *TelegramLinkService) IssueLink(ctx context.Context, userID uuid.UUID) (*TelegramLink, error) {
	provider, err := s.userRepo.GetProviderByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	// Telegram принимает в start-параметре только [A-Za-z0-9_-] до 64 символов
	code := strings.ReplaceAll(uuid.NewString(), "-", "")

	if err := s.codes.SaveLinkCode(ctx, code, provider.ID, s.codeTTL); err != nil {
		return nil, fmt.Errorf("save link code: %w", err)
	}

	link := &TelegramLink{
		Code:      code,
		ExpiresAt: s.now().Add(s.codeTTL),
	}
	if s.botUsername != "" {
		link.URL = fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, code)
	}

	s.logger.Info("Telegram link code issued", zap.String("provider_id", provider.ID.String()))
	return link, nil
}

// ConfirmLink привязывает чат к стримеру по коду; код сгорает после первого использования
func (s *TelegramLinkService) ConfirmLink(ctx context.Context, code string, chatID int64) (*model.Provider, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrLinkCodeInvalid
	}

	providerID, ok, err := s.codes.TakeLinkCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("take link code: %w", err)
	}
	if !ok {
		return nil, ErrLinkCodeInvalid
	}

	if err := s.userRepo.LinkTelegramChat(ctx, providerID, chatID); err != nil {
		return nil, err
	}

	provider, err := s.userRepo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	s.logger.Info("Telegram chat linked",
		zap.String("provider_id", providerID.String()),
		zap.Int64("chat_id", chatID),
	)

	return provider, nil
}

// Unlink отключает push в чат
func (s *TelegramLinkService) Unlink(ctx context.Context, chatID int64) (bool, error) {
	affected, err := s.userRepo.UnlinkTelegramChat(ctx, chatID)
	if err != nil {
		return false, err
	}

	if affected > 0 {
		s.logger.Info("Telegram chat unlinked", zap.Int64("chat_id", chatID))
	}

	return affected > 0, nil
}
