package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingRepository struct {
	db *base.Repository
}

func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{db: base.NewRepository(pool)}
}

// Create сохраняет оценку; одна оценка на бронирование
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	query := `
		INSERT INTO ratings (id, booking_id, client_id, provider_id, score, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}

	err := r.db.QueryRow(
		ctx, query,
		rating.ID,
		rating.BookingID,
		rating.ClientID,
		rating.ProviderID,
		rating.Score,
		rating.Comment,
	).Scan(&rating.CreatedAt)

	if err != nil {
		return fmt.Errorf("create rating: %w", mapPgError(err))
	}

	return nil
}

// GetByBookingID получает оценку бронирования
func (r *RatingRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Rating, error) {
	query := `
		SELECT id, booking_id, client_id, provider_id, score, comment, created_at
		FROM ratings
		WHERE booking_id = $1
	`

	var rt model.Rating
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&rt.ID,
		&rt.BookingID,
		&rt.ClientID,
		&rt.ProviderID,
		&rt.Score,
		&rt.Comment,
		&rt.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rating by booking id: %w", err)
	}

	return &rt, nil
}
