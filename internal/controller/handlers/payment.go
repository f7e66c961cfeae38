package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/streamer_booking/internal/gateway"
	"github.com/Freeeeeet/streamer_booking/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreatePayment POST /payments/create
func (h *Handlers) CreatePayment(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}

	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	serviceReq, err := req.toService(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), serviceReq)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

// PaymentCallback POST /payments/callback
func (h *Handlers) PaymentCallback(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		h.badRequest(c, err)
		return
	}

	var req paymentCallbackRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	// Статус и сумма берутся у шлюза, transaction_id нужен для сверки
	if req.OrderID == "" || req.TransactionID == "" {
		h.badRequest(c, errors.New("order_id and transaction_id are required"))
		return
	}

	grossAmount, err := gateway.ParseGrossAmount(req.GrossAmount)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	// Клиентские метаданные используются только если серверные истекли; плательщик всегда вызывающий
	if req.Metadata != nil {
		req.Metadata.ClientID = userID
	}

	outcome, err := h.paymentService.HandleCallback(c.Request.Context(), service.CallbackResult{
		OrderID:           req.OrderID,
		TransactionID:     req.TransactionID,
		TransactionStatus: req.TransactionStatus,
		GrossAmount:       grossAmount,
		Raw:               raw,
	}, req.Metadata)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if outcome.Booking != nil && outcome.Booking.ClientID != userID {
		h.respondError(c, service.ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// PaymentWebhook POST /payment-webhook.
// Ответы шлюзу: 200 "OK", 404 если бронирование не найдено, 500 с JSON на остальные ошибки.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		h.badRequest(c, err)
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.badRequest(c, err)
		return
	}

	outcome, err := h.paymentService.HandleWebhook(c.Request.Context(), req.toService(raw))
	if err != nil {
		if service.Kind(err) == service.KindNotFound {
			c.JSON(http.StatusNotFound, errorResponse{Error: "booking not found"})
			return
		}

		h.logger.Error("Payment webhook failed",
			zap.String("order_id", req.OrderID),
			zap.String("step", service.FailedStep(err)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Step: service.FailedStep(err)})
		return
	}

	h.logger.Debug("Payment webhook handled",
		zap.String("booking_id", outcome.BookingID.String()),
		zap.Bool("confirmed", outcome.Confirmed),
	)

	c.String(http.StatusOK, "OK")
}
