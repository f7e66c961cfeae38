package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	db *base.Repository
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: base.NewRepository(pool)}
}

// GetOrCreate возвращает диалог пары клиент-стример, создавая его при первом обращении
func (r *ConversationRepository) GetOrCreate(ctx context.Context, clientID, providerID uuid.UUID) (*model.Conversation, error) {
	// DO UPDATE нужен, чтобы RETURNING отдал существующую строку
	query := `
		INSERT INTO conversations (id, client_id, provider_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, provider_id) DO UPDATE SET client_id = EXCLUDED.client_id
		RETURNING id, client_id, provider_id, created_at, updated_at
	`

	var c model.Conversation
	err := r.db.QueryRow(ctx, query, uuid.New(), clientID, providerID).Scan(
		&c.ID,
		&c.ClientID,
		&c.ProviderID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}

	return &c, nil
}

// GetByID получает диалог по ID
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	query := `
		SELECT id, client_id, provider_id, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	var c model.Conversation
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.ClientID, &c.ProviderID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation by id: %w", err)
	}

	return &c, nil
}

// CreateMessage сохраняет сообщение и сдвигает updated_at диалога
func (r *ConversationRepository) CreateMessage(ctx context.Context, m *model.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, is_read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING created_at
	`

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.IsRead = false

	if err := r.db.QueryRow(ctx, query, m.ID, m.ConversationID, m.SenderID, m.Content).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	if _, err := r.db.ExecAffected(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, m.ConversationID); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	return nil
}

// ListMessages получает последние сообщения диалога в хронологическом порядке
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*model.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, is_read, created_at
		FROM (
			SELECT id, conversation_id, sender_id, content, is_read, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// MarkMessagesRead отмечает прочитанными сообщения собеседника
func (r *ConversationRepository) MarkMessagesRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read
	`

	affected, err := r.db.ExecAffected(ctx, query, conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return affected, nil
}
