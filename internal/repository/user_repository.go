package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: base.NewRepository(pool)}
}

const providerColumns = `id, user_id, display_name, hourly_rate, is_verified, telegram_chat_id, created_at`

func scanProvider(row scanner) (*model.Provider, error) {
	var p model.Provider
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.DisplayName,
		&p.HourlyRate,
		&p.IsVerified,
		&p.TelegramChatID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile получает профиль пользователя по ID
func (r *UserRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, full_name, email, is_admin, created_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.FullName, &p.Email, &p.IsAdmin, &p.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}

	return &p, nil
}

// GetProvider получает стримера по ID
func (r *UserRepository) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider by id: %w", err)
	}

	return provider, nil
}

// GetProviderByUserID получает стримера по аккаунту пользователя
func (r *UserRepository) GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE user_id = $1`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider by user id: %w", err)
	}

	return provider, nil
}

// LinkTelegramChat привязывает Telegram чат стримера для push-уведомлений
func (r *UserRepository) LinkTelegramChat(ctx context.Context, providerID uuid.UUID, chatID int64) error {
	query := `
		UPDATE providers
		SET telegram_chat_id = $1
		WHERE id = $2
	`

	affected, err := r.db.ExecAffected(ctx, query, chatID, providerID)
	if err != nil {
		return fmt.Errorf("link telegram chat: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("provider not found")
	}

	return nil
}

// UnlinkTelegramChat отвязывает чат от стримера; возвращает число отвязанных стримеров
func (r *UserRepository) UnlinkTelegramChat(ctx context.Context, chatID int64) (int64, error) {
	query := `
		UPDATE providers
		SET telegram_chat_id = NULL
		WHERE telegram_chat_id = $1
	`

	affected, err := r.db.ExecAffected(ctx, query, chatID)
	if err != nil {
		return 0, fmt.Errorf("unlink telegram chat: %w", err)
	}

	return affected, nil
}
