package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *base.Repository
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: base.NewRepository(pool)}
}

// Create сохраняет уведомление с is_read = false
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, provider_id, type, message, booking_id, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING created_at
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.IsRead = false

	err := r.db.QueryRow(ctx, query, n.ID, n.UserID, n.ProviderID, n.Type, n.Message, n.BookingID).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListByRecipient получает уведомления адресата, новые сверху
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient model.Recipient, onlyUnread bool) ([]*model.Notification, error) {
	column := "user_id"
	if recipient.Role == model.RoleProvider {
		column = "provider_id"
	}

	query := `
		SELECT id, user_id, provider_id, type, message, booking_id, is_read, created_at
		FROM notifications
		WHERE ` + column + ` = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.db.Query(ctx, query, recipient.ID, onlyUnread)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.ProviderID,
			&n.Type,
			&n.Message,
			&n.BookingID,
			&n.IsRead,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead отмечает уведомление прочитанным; другие поля не меняются
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, recipient model.Recipient) (bool, error) {
	column := "user_id"
	if recipient.Role == model.RoleProvider {
		column = "provider_id"
	}

	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND ` + column + ` = $2`

	affected, err := r.db.ExecAffected(ctx, query, id, recipient.ID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}

	return affected > 0, nil
}
