package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var voucherCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

type VoucherService struct {
	store  VoucherStore
	logger *zap.Logger
	now    func() time.Time
}

func NewVoucherService(store VoucherStore, logger *zap.Logger) *VoucherService {
	return &VoucherService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeVoucherCode приводит код к каноническому виду
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate проверяет ваучер для суммы бронирования.
// Бизнес-отказы возвращаются в результате, ошибка только для инфраструктуры.
func (s *VoucherService) Validate(ctx context.Context, code string, bookingAmount int64) (*model.VoucherValidation, error) {
	code = NormalizeVoucherCode(code)

	if !voucherCodePattern.MatchString(code) {
		return rejected(model.VoucherReasonInvalidCode, bookingAmount), nil
	}

	if bookingAmount <= 0 {
		return rejected(model.VoucherReasonInvalidAmount, bookingAmount), nil
	}

	voucher, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get voucher: %w", err)
	}

	if voucher == nil {
		return rejected(model.VoucherReasonNotFound, bookingAmount), nil
	}

	result := rejected("", bookingAmount)
	result.Voucher = voucher

	// Срок проверяем по времени: флаг is_active снимается фоновой задачей с опозданием
	switch {
	case !voucher.IsActive:
		result.Reason = model.VoucherReasonInactive
	case !s.now().Before(voucher.ExpiresAt):
		result.Reason = model.VoucherReasonExpired
	case voucher.RemainingQuantity <= 0:
		result.Reason = model.VoucherReasonDepleted
	default:
		discount := min(voucher.DiscountAmount, bookingAmount)
		result.Valid = true
		result.DiscountAmount = discount
		result.FinalPrice = bookingAmount - discount
	}

	if !result.Valid {
		s.logger.Info("Voucher rejected",
			zap.String("code", code),
			zap.String("reason", string(result.Reason)),
		)
	}

	return result, nil
}

func rejected(reason model.VoucherRejectReason, amount int64) *model.VoucherValidation {
	return &model.VoucherValidation{
		Valid:      false,
		Reason:     reason,
		FinalPrice: amount,
	}
}

// TrackUsageInput данные списания ваучера
type TrackUsageInput struct {
	VoucherID       uuid.UUID
	BookingID       uuid.UUID
	UserID          uuid.UUID
	DiscountApplied int64
	OriginalPrice   int64
	FinalPrice      int64
}

func (in TrackUsageInput) validate() error {
	if in.VoucherID == uuid.Nil || in.BookingID == uuid.Nil || in.UserID == uuid.Nil {
		return fmt.Errorf("%w: voucher, booking and user are required", ErrInvalidRequest)
	}
	if in.DiscountApplied < 0 || in.OriginalPrice < 0 || in.FinalPrice != in.OriginalPrice-in.DiscountApplied {
		return fmt.Errorf("%w: inconsistent voucher amounts", ErrInvalidRequest)
	}
	return nil
}

// TrackUsage списывает ваучер на бронирование.
// Сначала пишется usage (уникален по voucher+booking), затем атомарно уменьшается остаток.
// Если уменьшить не удалось, usage удаляется отдельной компенсирующей операцией.
func (s *VoucherService) TrackUsage(ctx context.Context, in TrackUsageInput) (*model.VoucherUsage, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	usage := &model.VoucherUsage{
		VoucherID:       in.VoucherID,
		BookingID:       in.BookingID,
		UserID:          in.UserID,
		DiscountApplied: in.DiscountApplied,
		OriginalPrice:   in.OriginalPrice,
		FinalPrice:      in.FinalPrice,
	}

	// Повтор в транзакции не должен упираться в уникальный индекс: ошибка обрывает транзакцию Postgres
	existing, err := s.store.GetUsageByBooking(ctx, in.VoucherID, in.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get voucher usage: %w", err)
	}
	if existing != nil {
		return nil, ErrVoucherAlreadyApplied
	}

	if err := s.store.InsertUsage(ctx, usage); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrVoucherAlreadyApplied
		}
		return nil, fmt.Errorf("insert voucher usage: %w", err)
	}

	remaining, total, ok, err := s.store.Decrement(ctx, in.VoucherID, s.now())
	if err != nil {
		s.rollbackUsage(ctx, usage, "decrement failed")
		return nil, fmt.Errorf("decrement voucher: %w", err)
	}

	if !ok {
		s.rollbackUsage(ctx, usage, "voucher depleted")
		return nil, ErrVoucherDepleted
	}

	if remaining < 0 || remaining >= total {
		s.rollbackUsage(ctx, usage, "post-decrement check failed")
		s.logger.Error("Voucher counter out of range",
			zap.String("voucher_id", in.VoucherID.String()),
			zap.Int("remaining", remaining),
			zap.Int("total", total),
		)
		return nil, ErrVoucherDepleted
	}

	s.logger.Info("Voucher applied",
		zap.String("voucher_id", in.VoucherID.String()),
		zap.String("booking_id", in.BookingID.String()),
		zap.Int64("discount", in.DiscountApplied),
		zap.Int("remaining", remaining),
	)

	return usage, nil
}

// rollbackUsage удаляет только что записанный usage
func (s *VoucherService) rollbackUsage(ctx context.Context, usage *model.VoucherUsage, cause string) {
	s.logger.Warn("Rolling back voucher usage",
		zap.String("operation", "rollback"),
		zap.String("usage_id", usage.ID.String()),
		zap.String("voucher_id", usage.VoucherID.String()),
		zap.String("booking_id", usage.BookingID.String()),
		zap.String("cause", cause),
	)

	if err := s.store.DeleteUsage(context.WithoutCancel(ctx), usage.ID); err != nil {
		s.logger.Error("Voucher usage rollback failed",
			zap.String("operation", "rollback"),
			zap.String("usage_id", usage.ID.String()),
			zap.Error(err),
		)
	}
}

// CreateVoucherInput параметры нового ваучера
type CreateVoucherInput struct {
	Code           string
	DiscountAmount int64
	Quantity       int
	ExpiresAt      time.Time
}

// Create заводит ваучер
func (s *VoucherService) Create(ctx context.Context, in CreateVoucherInput) (*model.Voucher, error) {
	code := NormalizeVoucherCode(in.Code)
	if !voucherCodePattern.MatchString(code) {
		return nil, fmt.Errorf("%w: malformed voucher code", ErrInvalidRequest)
	}
	if in.DiscountAmount <= 0 || in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: discount and quantity must be positive", ErrInvalidRequest)
	}
	if !in.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidRequest)
	}

	voucher := &model.Voucher{
		Code:              code,
		DiscountAmount:    in.DiscountAmount,
		TotalQuantity:     in.Quantity,
		RemainingQuantity: in.Quantity,
		IsActive:          true,
		ExpiresAt:         in.ExpiresAt,
	}

	if err := s.store.Create(ctx, voucher); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: voucher code already exists", ErrInvalidRequest)
		}
		return nil, fmt.Errorf("create voucher: %w", err)
	}

	s.logger.Info("Voucher created",
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("code", voucher.Code),
		zap.Int("quantity", voucher.TotalQuantity),
	)

	return voucher, nil
}

// DeactivateExpired снимает флаг с истёкших ваучеров
func (s *VoucherService) DeactivateExpired(ctx context.Context) (int64, error) {
	count, err := s.store.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("deactivate expired vouchers: %w", err)
	}

	s.logger.Info("Expired vouchers deactivated", zap.Int64("count", count))

	return count, nil
}
