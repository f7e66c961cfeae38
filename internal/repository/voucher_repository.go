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

const voucherColumns = `id, code, discount_amount, total_quantity, remaining_quantity, is_active, expires_at, created_at`

type VoucherRepository struct {
	db *base.Repository
}

func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{db: base.NewRepository(pool)}
}

func scanVoucher(row scanner) (*model.Voucher, error) {
	var v model.Voucher
	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.DiscountAmount,
		&v.TotalQuantity,
		&v.RemainingQuantity,
		&v.IsActive,
		&v.ExpiresAt,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create создаёт ваучер
func (r *VoucherRepository) Create(ctx context.Context, voucher *model.Voucher) error {
	query := `
		INSERT INTO vouchers (id, code, discount_amount, total_quantity, remaining_quantity, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if voucher.ID == uuid.Nil {
		voucher.ID = uuid.New()
	}

	err := r.db.QueryRow(
		ctx, query,
		voucher.ID,
		voucher.Code,
		voucher.DiscountAmount,
		voucher.TotalQuantity,
		voucher.RemainingQuantity,
		voucher.IsActive,
		voucher.ExpiresAt,
	).Scan(&voucher.CreatedAt)

	if err != nil {
		return fmt.Errorf("create voucher: %w", mapPgError(err))
	}

	return nil
}

// GetByCode ищет ваучер без учёта регистра
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE lower(code) = lower($1)`

	voucher, err := scanVoucher(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher by code: %w", err)
	}

	return voucher, nil
}

// GetByID получает ваучер по ID
func (r *VoucherRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1`

	voucher, err := scanVoucher(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher by id: %w", err)
	}

	return voucher, nil
}

// InsertUsage записывает использование ваучера.
// Повтор для той же пары (voucher_id, booking_id) вернёт ErrDuplicate.
func (r *VoucherRepository) InsertUsage(ctx context.Context, usage *model.VoucherUsage) error {
	query := `
		INSERT INTO voucher_usages (id, voucher_id, booking_id, user_id, discount_applied, original_price, final_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}

	err := r.db.QueryRow(
		ctx, query,
		usage.ID,
		usage.VoucherID,
		usage.BookingID,
		usage.UserID,
		usage.DiscountApplied,
		usage.OriginalPrice,
		usage.FinalPrice,
	).Scan(&usage.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert voucher usage: %w", mapPgError(err))
	}

	return nil
}

// DeleteUsage удаляет запись об использовании (компенсирующее действие)
func (r *VoucherRepository) DeleteUsage(ctx context.Context, usageID uuid.UUID) error {
	query := `DELETE FROM voucher_usages WHERE id = $1`

	if _, err := r.db.ExecAffected(ctx, query, usageID); err != nil {
		return fmt.Errorf("delete voucher usage: %w", err)
	}

	return nil
}

// GetUsageByBooking получает использование ваучера для бронирования
func (r *VoucherRepository) GetUsageByBooking(ctx context.Context, voucherID, bookingID uuid.UUID) (*model.VoucherUsage, error) {
	query := `
		SELECT id, voucher_id, booking_id, user_id, discount_applied, original_price, final_price, created_at
		FROM voucher_usages
		WHERE voucher_id = $1 AND booking_id = $2
	`

	var u model.VoucherUsage
	err := r.db.QueryRow(ctx, query, voucherID, bookingID).Scan(
		&u.ID,
		&u.VoucherID,
		&u.BookingID,
		&u.UserID,
		&u.DiscountApplied,
		&u.OriginalPrice,
		&u.FinalPrice,
		&u.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher usage: %w", err)
	}

	return &u, nil
}

// Decrement атомарно уменьшает остаток на единицу.
// Ничего не меняет, если ваучер исчерпан, выключен или истёк на момент now; тогда ok = false.
func (r *VoucherRepository) Decrement(ctx context.Context, voucherID uuid.UUID, now time.Time) (remaining, total int, ok bool, err error) {
	query := `
		UPDATE vouchers
		SET remaining_quantity = remaining_quantity - 1
		WHERE id = $1
		  AND remaining_quantity > 0
		  AND is_active
		  AND expires_at > $2
		RETURNING remaining_quantity, total_quantity
	`

	err = r.db.QueryRow(ctx, query, voucherID, now).Scan(&remaining, &total)
	if err != nil {
		if base.IsNotFound(err) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("decrement voucher: %w", err)
	}

	return remaining, total, true, nil
}

// DeactivateExpired снимает флаг is_active с истёкших ваучеров
func (r *VoucherRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE vouchers
		SET is_active = FALSE
		WHERE is_active AND expires_at <= $1
	`

	affected, err := r.db.ExecAffected(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired vouchers: %w", err)
	}

	return affected, nil
}
