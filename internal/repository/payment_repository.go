package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, booking_id, order_id, amount, status, transaction_id, gateway_response, created_at, updated_at`

type PaymentRepository struct {
	db *base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: base.NewRepository(pool)}
}

func scanPayment(row scanner) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.OrderID,
		&p.Amount,
		&p.Status,
		&p.TransactionID,
		&p.GatewayResponse,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIfAbsent создаёт платёж. Уникальность по transaction_id и booking_id
// делает повторный callback безопасным: второй вызов вернёт false.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, payment *model.Payment) (bool, error) {
	query := `
		INSERT INTO payments (id, booking_id, order_id, amount, status, transaction_id, gateway_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
		RETURNING created_at, updated_at
	`

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	err := r.db.QueryRow(
		ctx, query,
		payment.ID,
		payment.BookingID,
		payment.OrderID,
		payment.Amount,
		payment.Status,
		payment.TransactionID,
		payment.GatewayResponse,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create payment: %w", mapPgError(err))
	}

	return true, nil
}

// GetByTransactionID получает платёж по ID транзакции платёжного шлюза
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by transaction id: %w", err)
	}

	return payment, nil
}

// GetByBookingID получает платёж бронирования
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by booking id: %w", err)
	}

	return payment, nil
}

// UpdateStatus меняет статус платежа только вперёд: success не перезаписывается,
// failed может стать только success. Возвращает false, если переход не разрешён.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status model.PaymentStatus, transactionID *string, gatewayResponse []byte) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2,
			transaction_id = COALESCE(transaction_id, $3),
			gateway_response = COALESCE($4, gateway_response),
			updated_at = NOW()
		WHERE booking_id = $1
		  AND status <> 'success'
		  AND status <> $2
		  AND (status = 'pending' OR $2 = 'success')
	`

	affected, err := r.db.ExecAffected(ctx, query, bookingID, status, transactionID, gatewayResponse)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", mapPgError(err))
	}

	return affected > 0, nil
}
