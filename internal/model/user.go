package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile публичный профиль пользователя платформы (клиента)
type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider стример, который проводит livestream по бронированию
type Provider struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"` // аккаунт, под которым стример входит в систему
	DisplayName    string    `json:"display_name"`
	HourlyRate     int64     `json:"hourly_rate"`
	IsVerified     bool      `json:"is_verified"`
	TelegramChatID *int64    `json:"-"` // чат для push-уведомлений, если привязан
	CreatedAt      time.Time `json:"created_at"`
}
