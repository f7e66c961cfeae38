package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `
	id, client_id, provider_id, start_time, end_time, price, status, reason, platform,
	stream_credentials, items_received, reschedule_count, requested_start_time, requested_end_time,
	reschedule_by, refund_percent, created_at, updated_at
`

type BookingRepository struct {
	db *base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: base.NewRepository(pool)}
}

func scanBooking(row scanner) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.ClientID,
		&b.ProviderID,
		&b.StartTime,
		&b.EndTime,
		&b.Price,
		&b.Status,
		&b.Reason,
		&b.Platform,
		&b.StreamCredentials,
		&b.ItemsReceived,
		&b.RescheduleCount,
		&b.RequestedStartTime,
		&b.RequestedEndTime,
		&b.RescheduleBy,
		&b.RefundPercent,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	_, err := r.CreateIfAbsent(ctx, booking)
	return err
}

// CreateIfAbsent создаёт бронирование с заранее выделенным ID.
// Если запись с таким ID уже есть, возвращает false без ошибки.
func (r *BookingRepository) CreateIfAbsent(ctx context.Context, booking *model.Booking) (bool, error) {
	query := `
		INSERT INTO bookings (id, client_id, provider_id, start_time, end_time, price, status, platform, stream_credentials)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := r.db.QueryRow(
		ctx, query,
		booking.ID,
		booking.ClientID,
		booking.ProviderID,
		booking.StartTime,
		booking.EndTime,
		booking.Price,
		booking.Status,
		booking.Platform,
		booking.StreamCredentials,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create booking: %w", mapPgError(err))
	}

	return true, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// ListByClient получает все бронирования клиента
func (r *BookingRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE client_id = $1 ORDER BY start_time DESC`
	return r.list(ctx, "list bookings by client", query, clientID)
}

// ListByProvider получает все бронирования стримера
func (r *BookingRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE provider_id = $1 ORDER BY start_time DESC`
	return r.list(ctx, "list bookings by provider", query, providerID)
}

func (r *BookingRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// UpdateStatus атомарно меняет статус, только если текущий статус входит в from.
// Возвращает nil, nil если ни одна строка не подошла.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus, reason *string, refundPercent *int) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2,
			reason = COALESCE($4, reason),
			refund_percent = COALESCE($5, refund_percent),
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id, to, statusStrings(from), reason, refundPercent))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	return booking, nil
}

// RequestReschedule переводит бронирование в reschedule_requested и увеличивает счётчик переносов.
// Условие на счётчик проверяется в том же UPDATE, поэтому второй перенос не пройдёт даже при гонке.
func (r *BookingRepository) RequestReschedule(ctx context.Context, id uuid.UUID, from []model.BookingStatus, requestedBy uuid.UUID, reason string, newStart, newEnd time.Time, maxReschedules int) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'reschedule_requested',
			reason = $3,
			requested_start_time = $4,
			requested_end_time = $5,
			reschedule_by = $7,
			reschedule_count = reschedule_count + 1,
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($2) AND reschedule_count < $6
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id, statusStrings(from), reason, newStart, newEnd, maxReschedules, requestedBy))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("request reschedule: %w", err)
	}

	return booking, nil
}

// ApplyReschedule переносит бронирование на запрошенное время и возвращает его в accepted
func (r *BookingRepository) ApplyReschedule(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'accepted',
			start_time = requested_start_time,
			end_time = requested_end_time,
			requested_start_time = NULL,
			requested_end_time = NULL,
			updated_at = NOW()
		WHERE id = $1 AND status = 'reschedule_requested' AND requested_start_time IS NOT NULL
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("apply reschedule: %w", err)
	}

	return booking, nil
}

// MarkItemsReceived отмечает, что стример получил товары для стрима. false - бронирования нет.
func (r *BookingRepository) MarkItemsReceived(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET items_received = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	affected, err := r.db.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark items received: %w", err)
	}

	return affected > 0, nil
}

// InsertAccepted материализует принятое бронирование.
// Пересечение с другим принятым бронированием стримера отсекается exclusion-ограничением.
func (r *BookingRepository) InsertAccepted(ctx context.Context, accepted *model.AcceptedBooking) error {
	query := `
		INSERT INTO accepted_bookings (booking_id, provider_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecAffected(ctx, query, accepted.BookingID, accepted.ProviderID, accepted.StartTime, accepted.EndTime)
	if err != nil {
		return fmt.Errorf("insert accepted booking: %w", mapPgError(err))
	}

	return nil
}

// DeleteAccepted удаляет запись о принятом бронировании (отмена, перенос)
func (r *BookingRepository) DeleteAccepted(ctx context.Context, bookingID uuid.UUID) error {
	query := `DELETE FROM accepted_bookings WHERE booking_id = $1`

	if _, err := r.db.ExecAffected(ctx, query, bookingID); err != nil {
		return fmt.Errorf("delete accepted booking: %w", err)
	}

	return nil
}

// FindOverlappingAccepted ищет принятые бронирования стримера, пересекающиеся с [start, end)
func (r *BookingRepository) FindOverlappingAccepted(ctx context.Context, providerID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*model.AcceptedBooking, error) {
	query := `
		SELECT booking_id, provider_id, start_time, end_time
		FROM accepted_bookings
		WHERE provider_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND booking_id <> $4
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, providerID, start, end, exclude)
	if err != nil {
		return nil, fmt.Errorf("find overlapping accepted bookings: %w", err)
	}
	defer rows.Close()

	var result []*model.AcceptedBooking
	for rows.Next() {
		var a model.AcceptedBooking
		if err := rows.Scan(&a.BookingID, &a.ProviderID, &a.StartTime, &a.EndTime); err != nil {
			return nil, fmt.Errorf("scan accepted booking: %w", err)
		}
		result = append(result, &a)
	}

	return result, rows.Err()
}
