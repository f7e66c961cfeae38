package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/formatting"
	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/service"
	"github.com/google/uuid"
)

// Запросы API. Каждый DTO закрытый и переводится в тип запроса сервиса на границе.

type createBookingRequest struct {
	ProviderID        uuid.UUID `json:"provider_id" binding:"required"`
	StartTime         time.Time `json:"start_time" binding:"required"`
	EndTime           time.Time `json:"end_time" binding:"required"`
	Price             int64     `json:"price" binding:"required,gt=0"`
	Platform          string    `json:"platform" binding:"required"`
	VoucherCode       string    `json:"voucher_code"`
	StreamCredentials *string   `json:"stream_credentials"`
}

func (r createBookingRequest) toService(clientID uuid.UUID) service.BookingCreateRequest {
	return service.BookingCreateRequest{
		ClientID:          clientID,
		ProviderID:        r.ProviderID,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		Price:             r.Price,
		Platform:          r.Platform,
		VoucherCode:       r.VoucherCode,
		StreamCredentials: r.StreamCredentials,
	}
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type rescheduleRequest struct {
	Reason       string    `json:"reason" binding:"required"`
	NewStartTime time.Time `json:"new_start_time" binding:"required"`
	NewEndTime   time.Time `json:"new_end_time" binding:"required"`
}

type respondRescheduleRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

type rateRequest struct {
	Score   int    `json:"score" binding:"required"`
	Comment string `json:"comment"`
}

// providerSummary минимальные поля стримера в ответе
type providerSummary struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

type bookingResponse struct {
	*model.Booking
	StatusLabel string           `json:"status_label"`
	Provider    *providerSummary `json:"provider,omitempty"`
}

func newBookingResponse(b *model.Booking) bookingResponse {
	display := formatting.GetBookingStatusDisplay(b.Status)
	resp := bookingResponse{Booking: b, StatusLabel: display.Emoji + " " + display.Text}
	if b.Provider != nil {
		resp.Provider = &providerSummary{ID: b.Provider.ID, DisplayName: b.Provider.DisplayName}
	}
	return resp
}

func newBookingsResponse(bookings []*model.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingResponse(b))
	}
	return out
}

type paymentMetadataRequest struct {
	StreamerID uuid.UUID `json:"streamerId" binding:"required"`
	UserID     uuid.UUID `json:"userId"`
	StartTime  time.Time `json:"startTime" binding:"required"`
	EndTime    time.Time `json:"endTime" binding:"required"`
	Platform   string    `json:"platform" binding:"required"`
	Price      int64     `json:"price" binding:"required,gt=0"`
	Voucher    string    `json:"voucher"`
	FinalPrice int64     `json:"finalPrice" binding:"required,gt=0"`
}

type createPaymentRequest struct {
	Amount      int64                  `json:"amount" binding:"required,gt=0"`
	ClientName  string                 `json:"clientName" binding:"required"`
	ClientEmail string                 `json:"clientEmail" binding:"required,email"`
	Description string                 `json:"description"`
	Metadata    paymentMetadataRequest `json:"metadata" binding:"required"`
}

func (r createPaymentRequest) toService(clientID uuid.UUID) (service.CreatePaymentRequest, error) {
	if r.Metadata.UserID != uuid.Nil && r.Metadata.UserID != clientID {
		return service.CreatePaymentRequest{}, fmt.Errorf("%w: metadata user does not match caller", service.ErrForbidden)
	}

	return service.CreatePaymentRequest{
		ClientID:    clientID,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		Description: r.Description,
		Amount:      r.Amount,
		ProviderID:  r.Metadata.StreamerID,
		StartTime:   r.Metadata.StartTime,
		EndTime:     r.Metadata.EndTime,
		Platform:    r.Metadata.Platform,
		Price:       r.Metadata.Price,
		VoucherCode: r.Metadata.Voucher,
		FinalPrice:  r.Metadata.FinalPrice,
	}, nil
}

// paymentCallbackRequest результат оплаты из виджета Snap
type paymentCallbackRequest struct {
	OrderID           string                 `json:"order_id" binding:"required"`
	TransactionID     string                 `json:"transaction_id" binding:"required"`
	TransactionStatus string                 `json:"transaction_status"`
	GrossAmount       string                 `json:"gross_amount"`
	Metadata          *model.PaymentMetadata `json:"metadata"`
}

// webhookRequest уведомление Midtrans; поля кроме трёх обязательных приходят не всегда
type webhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

func (r webhookRequest) toService(raw json.RawMessage) service.WebhookPayload {
	return service.WebhookPayload{
		OrderID:           r.OrderID,
		TransactionID:     r.TransactionID,
		TransactionStatus: r.TransactionStatus,
		FraudStatus:       r.FraudStatus,
		StatusCode:        r.StatusCode,
		GrossAmount:       r.GrossAmount,
		SignatureKey:      r.SignatureKey,
		Raw:               raw,
	}
}

type validateVoucherRequest struct {
	Code   string `json:"code" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

type startConversationRequest struct {
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
