package model

import (
	"time"

	"github.com/google/uuid"
)

type Voucher struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	DiscountAmount    int64     `json:"discount_amount"`
	TotalQuantity     int       `json:"total_quantity"`
	RemainingQuantity int       `json:"remaining_quantity"`
	IsActive          bool      `json:"is_active"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// UsableAt проверяет флаг, срок и остаток на момент now.
// Срок сравнивается по времени, а не по флагу is_active, который может быть устаревшим.
func (v *Voucher) UsableAt(now time.Time) bool {
	return v.IsActive && now.Before(v.ExpiresAt) && v.RemainingQuantity > 0
}

// VoucherUsage факт списания ваучера на конкретное бронирование
type VoucherUsage struct {
	ID              uuid.UUID `json:"id"`
	VoucherID       uuid.UUID `json:"voucher_id"`
	BookingID       uuid.UUID `json:"booking_id"`
	UserID          uuid.UUID `json:"user_id"`
	DiscountApplied int64     `json:"discount_applied"`
	OriginalPrice   int64     `json:"original_price"`
	FinalPrice      int64     `json:"final_price"`
	CreatedAt       time.Time `json:"created_at"`
}

type VoucherRejectReason string

const (
	VoucherReasonNotFound      VoucherRejectReason = "not_found"
	VoucherReasonInactive      VoucherRejectReason = "inactive"
	VoucherReasonExpired       VoucherRejectReason = "expired"
	VoucherReasonDepleted      VoucherRejectReason = "depleted"
	VoucherReasonInvalidCode   VoucherRejectReason = "invalid_code"
	VoucherReasonInvalidAmount VoucherRejectReason = "invalid_amount"
)

// VoucherValidation результат проверки ваучера; бизнес-отказы не являются ошибками
type VoucherValidation struct {
	Valid          bool                `json:"valid"`
	Reason         VoucherRejectReason `json:"reason,omitempty"`
	Voucher        *Voucher            `json:"voucher,omitempty"`
	DiscountAmount int64               `json:"discount_amount"`
	FinalPrice     int64               `json:"final_price"`
}
