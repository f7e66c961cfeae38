package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AvailabilityRepository управляет недельными окнами доступности стримеров
type AvailabilityRepository struct {
	db *base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{db: base.NewRepository(pool)}
}

// Create создаёт новое окно доступности
func (r *AvailabilityRepository) Create(ctx context.Context, a *model.Availability) error {
	query := `
		INSERT INTO provider_availability (id, provider_id, weekday, start_minute, end_minute, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	_, err := r.db.ExecAffected(ctx, query, a.ID, a.ProviderID, a.Weekday, a.StartMinute, a.EndMinute, a.IsActive)
	if err != nil {
		return fmt.Errorf("create availability: %w", err)
	}

	return nil
}

// ListByProvider получает активные окна стримера
func (r *AvailabilityRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Availability, error) {
	query := `
		SELECT id, provider_id, weekday, start_minute, end_minute, is_active
		FROM provider_availability
		WHERE provider_id = $1 AND is_active = true
		ORDER BY weekday, start_minute
	`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	defer rows.Close()

	var windows []*model.Availability
	for rows.Next() {
		a := &model.Availability{}
		err := rows.Scan(
			&a.ID,
			&a.ProviderID,
			&a.Weekday,
			&a.StartMinute,
			&a.EndMinute,
			&a.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		windows = append(windows, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability: %w", err)
	}

	return windows, nil
}
