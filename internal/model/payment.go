package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// CanMoveTo статусы платежа меняются только вперёд: success терминален
func (s PaymentStatus) CanMoveTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next != PaymentStatusPending
	case PaymentStatusFailed:
		return next == PaymentStatusSuccess
	default:
		return false
	}
}

type Payment struct {
	ID              uuid.UUID       `json:"id"`
	BookingID       uuid.UUID       `json:"booking_id"`
	OrderID         string          `json:"order_id"`
	Amount          int64           `json:"amount"`
	Status          PaymentStatus   `json:"status"`
	TransactionID   *string         `json:"transaction_id,omitempty"`
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty"` // снимок ответа платёжного шлюза
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PaymentMetadata данные будущего бронирования, сохранённые при создании платежа.
// Бронирование создаётся только после успешного callback по этим данным.
// Поля в camelCase, как их передаёт платёжный виджет клиента; остальной API в snake_case.
type PaymentMetadata struct {
	BookingID      uuid.UUID  `json:"bookingId"`
	ProviderID     uuid.UUID  `json:"streamerId"`
	ClientID       uuid.UUID  `json:"userId"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        time.Time  `json:"endTime"`
	Platform       string     `json:"platform"`
	Price          int64      `json:"price"`
	VoucherCode    string     `json:"voucher,omitempty"`
	VoucherID      *uuid.UUID `json:"voucherId,omitempty"`
	DiscountAmount int64      `json:"discountAmount"`
	FinalPrice     int64      `json:"finalPrice"`
	OrderID        string     `json:"orderId"`
}

// HasVoucher - к оплате применён ваучер
func (m *PaymentMetadata) HasVoucher() bool {
	return m.VoucherID != nil && *m.VoucherID != uuid.Nil
}
