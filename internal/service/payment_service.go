package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/formatting"
	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OpHandleCallback = "handle_callback"
	OpHandleWebhook  = "handle_webhook"

	orderIDPrefix = "LS"

	DefaultIntentTTL = 24 * time.Hour
)

// Статусы транзакции платёжного шлюза
const (
	GatewayStatusSettlement = "settlement"
	GatewayStatusCapture    = "capture"
	GatewayStatusPending    = "pending"
	GatewayStatusDeny       = "deny"
	GatewayStatusCancel     = "cancel"
	GatewayStatusExpire     = "expire"
	GatewayStatusFailure    = "failure"

	fraudStatusChallenge = "challenge"
)

// IsSettled - средства получены
func IsSettled(transactionStatus string) bool {
	return transactionStatus == GatewayStatusSettlement || transactionStatus == GatewayStatusCapture
}

// MapPaymentStatus переводит статус шлюза в статус платежа
func MapPaymentStatus(transactionStatus, fraudStatus string) model.PaymentStatus {
	switch transactionStatus {
	case GatewayStatusSettlement:
		return model.PaymentStatusSuccess
	case GatewayStatusCapture:
		if fraudStatus == fraudStatusChallenge {
			return model.PaymentStatusPending
		}
		return model.PaymentStatusSuccess
	case GatewayStatusDeny, GatewayStatusCancel, GatewayStatusExpire, GatewayStatusFailure:
		return model.PaymentStatusFailed
	default:
		return model.PaymentStatusPending
	}
}

// NewOrderID формирует уникальный ID заказа LS_<bookingID>_<unixMillis><rand>
func NewOrderID(bookingID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d%04d", orderIDPrefix, bookingID, now.UnixMilli(), rand.IntN(10000))
}

// BookingIDFromOrderID достаёт ID бронирования из среднего сегмента order_id
func BookingIDFromOrderID(orderID string) (uuid.UUID, error) {
	parts := strings.Split(orderID, "_")
	if len(parts) != 3 {
		return uuid.Nil, fmt.Errorf("%w: malformed order id %q", ErrInvalidRequest, orderID)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed booking id in order %q", ErrInvalidRequest, orderID)
	}

	return id, nil
}

type PaymentService struct {
	tx            Transactor
	bookingRepo   BookingStore
	paymentRepo   PaymentStore
	userRepo      UserStore
	vouchers      *VoucherService
	notifications *NotificationService
	processor     PaymentProcessor
	intents       IntentStore
	verifier      SignatureVerifier
	intentTTL     time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewPaymentService создаёт сервис оплаты. verifier может быть nil: тогда подпись webhook не проверяется.
func NewPaymentService(
	tx Transactor,
	bookingRepo BookingStore,
	paymentRepo PaymentStore,
	userRepo UserStore,
	vouchers *VoucherService,
	notifications *NotificationService,
	processor PaymentProcessor,
	intents IntentStore,
	verifier SignatureVerifier,
	intentTTL time.Duration,
	logger *zap.Logger,
) *PaymentService {
	if intentTTL <= 0 {
		intentTTL = DefaultIntentTTL
	}

	return &PaymentService{
		tx:            tx,
		bookingRepo:   bookingRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		vouchers:      vouchers,
		notifications: notifications,
		processor:     processor,
		intents:       intents,
		verifier:      verifier,
		intentTTL:     intentTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// CreatePaymentRequest запрос клиента на оплату будущего бронирования
type CreatePaymentRequest struct {
	ClientID    uuid.UUID
	ClientName  string
	ClientEmail string
	Description string
	Amount      int64
	ProviderID  uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	Platform    string
	Price       int64
	VoucherCode string
	FinalPrice  int64
}

func (r CreatePaymentRequest) validate() error {
	if r.ClientID == uuid.Nil || r.ProviderID == uuid.Nil {
		return fmt.Errorf("%w: client and provider are required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.ClientName) == "" || strings.TrimSpace(r.ClientEmail) == "" {
		return fmt.Errorf("%w: client name and email are required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Platform) == "" {
		return fmt.Errorf("%w: platform is required", ErrInvalidRequest)
	}
	if !r.StartTime.Before(r.EndTime) {
		return ErrInvalidRange
	}
	if r.Price <= 0 || r.Amount <= 0 {
		return fmt.Errorf("%w: price and amount must be positive", ErrInvalidRequest)
	}
	return nil
}

// PaymentIntent токен оплаты и данные, по которым будет создано бронирование.
// Ответ в camelCase вместе с вложенными PaymentMetadata.
type PaymentIntent struct {
	Token       string                `json:"token"`
	RedirectURL string                `json:"redirectUrl,omitempty"`
	OrderID     string                `json:"orderId"`
	Metadata    model.PaymentMetadata `json:"metadata"`
}

// CreatePaymentIntent регистрирует платёж во внешнем процессоре.
// Бронирование не создаётся: это произойдёт только после успешного callback.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, req CreatePaymentRequest) (*PaymentIntent, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	provider, err := s.userRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	meta := model.PaymentMetadata{
		BookingID:  uuid.New(),
		ProviderID: req.ProviderID,
		ClientID:   req.ClientID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Platform:   req.Platform,
		Price:      req.Price,
		FinalPrice: req.Price,
	}

	// Скидку пересчитываем на сервере, клиентской finalPrice не доверяем
	if strings.TrimSpace(req.VoucherCode) != "" {
		validation, err := s.vouchers.Validate(ctx, req.VoucherCode, req.Price)
		if err != nil {
			return nil, fmt.Errorf("validate voucher: %w", err)
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: voucher %s", ErrInvalidRequest, validation.Reason)
		}

		voucherID := validation.Voucher.ID
		meta.VoucherCode = validation.Voucher.Code
		meta.VoucherID = &voucherID
		meta.DiscountAmount = validation.DiscountAmount
		meta.FinalPrice = validation.FinalPrice
	}

	if req.FinalPrice != meta.FinalPrice || req.Amount != meta.FinalPrice {
		s.logger.Warn("Payment amount mismatch",
			zap.Int64("requested_amount", req.Amount),
			zap.Int64("requested_final_price", req.FinalPrice),
			zap.Int64("expected_final_price", meta.FinalPrice),
		)
		return nil, ErrAmountMismatch
	}

	meta.OrderID = NewOrderID(meta.BookingID, s.now())

	if err := s.intents.Save(ctx, &meta, s.intentTTL); err != nil {
		return nil, fmt.Errorf("save payment intent: %w", err)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Live %s %s", provider.DisplayName, formatting.FormatDateTime(req.StartTime))
	}

	token, err := s.processor.CreateTransaction(ctx, TransactionRequest{
		OrderID:     meta.OrderID,
		Amount:      meta.FinalPrice,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Description: description,
	})
	if err != nil {
		s.logger.Error("Payment processor call failed",
			zap.String("order_id", meta.OrderID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if token == nil || token.Token == "" {
		s.logger.Error("Payment processor returned no token", zap.String("order_id", meta.OrderID))
		return nil, ErrGatewayUnavailable
	}

	s.logger.Info("Payment intent created",
		zap.String("order_id", meta.OrderID),
		zap.String("booking_id", meta.BookingID.String()),
		zap.Int64("amount", meta.FinalPrice),
		zap.Bool("voucher", meta.HasVoucher()),
	)

	return &PaymentIntent{
		Token:       token.Token,
		RedirectURL: token.RedirectURL,
		OrderID:     meta.OrderID,
		Metadata:    meta,
	}, nil
}

// CallbackResult результат оплаты, полученный клиентом от платёжного виджета.
// Статус, сумма и transaction_id сверяются со шлюзом, значениям клиента не доверяем.
type CallbackResult struct {
	OrderID           string
	TransactionID     string
	TransactionStatus string
	GrossAmount       int64
	Raw               json.RawMessage
}

// CallbackOutcome итог обработки callback
type CallbackOutcome struct {
	Booking  *model.Booking `json:"booking,omitempty"`
	Payment  *model.Payment `json:"payment,omitempty"`
	Replayed bool           `json:"replayed"`
	Ignored  bool           `json:"ignored"`
	Status   string         `json:"status"`
}

// HandleCallback создаёт бронирование, платёж и списание ваучера после успешной оплаты.
// Все записи делаются в одной транзакции: либо применены все шаги, либо ни один.
// Повтор с тем же заказом ничего не дублирует.
func (s *PaymentService) HandleCallback(ctx context.Context, result CallbackResult, clientMeta *model.PaymentMetadata) (*CallbackOutcome, error) {
	if result.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrInvalidRequest)
	}

	meta, err := s.resolveMetadata(ctx, result.OrderID, clientMeta)
	if err != nil {
		return nil, err
	}

	stepErr := func(step string, err error) error {
		s.logger.Error("Payment callback step failed",
			zap.String("op", OpHandleCallback),
			zap.String("step", step),
			zap.String("booking_id", meta.BookingID.String()),
			zap.String("order_id", result.OrderID),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err),
		)
		return &StepError{Op: OpHandleCallback, Step: step, BookingID: meta.BookingID, OrderID: result.OrderID, Err: err}
	}

	// verify_payment
	status, err := s.processor.CheckTransaction(ctx, result.OrderID)
	if err != nil {
		return nil, stepErr(StepVerifyPayment, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err))
	}
	if status == nil || (status.OrderID != "" && status.OrderID != result.OrderID) {
		return nil, stepErr(StepVerifyPayment, fmt.Errorf("%w: gateway has no status for order %s", ErrGatewayUnavailable, result.OrderID))
	}
	if result.TransactionID != "" && status.TransactionID != result.TransactionID {
		return nil, stepErr(StepVerifyPayment, fmt.Errorf("%w: transaction %s is not the gateway transaction for order %s", ErrInvalidRequest, result.TransactionID, result.OrderID))
	}
	if result.TransactionStatus != "" && result.TransactionStatus != status.TransactionStatus {
		s.logger.Warn("Client transaction status differs from gateway",
			zap.String("order_id", result.OrderID),
			zap.String("client_status", result.TransactionStatus),
			zap.String("gateway_status", status.TransactionStatus),
		)
	}

	paymentStatus := MapPaymentStatus(status.TransactionStatus, status.FraudStatus)
	if paymentStatus != model.PaymentStatusSuccess {
		s.logger.Info("Payment callback ignored",
			zap.String("order_id", result.OrderID),
			zap.String("transaction_status", status.TransactionStatus),
		)

		if paymentStatus == model.PaymentStatusFailed {
			s.notifyPaymentFailed(ctx, meta)
		}

		return &CallbackOutcome{Ignored: true, Status: status.TransactionStatus}, nil
	}

	// verify_amount
	if meta.Price-meta.DiscountAmount != meta.FinalPrice || meta.FinalPrice < 0 {
		return nil, stepErr(StepVerifyAmount, fmt.Errorf("%w: price %d discount %d final %d", ErrAmountMismatch, meta.Price, meta.DiscountAmount, meta.FinalPrice))
	}
	if status.GrossAmount != meta.FinalPrice {
		return nil, stepErr(StepVerifyAmount, fmt.Errorf("%w: paid %d expected %d", ErrAmountMismatch, status.GrossAmount, meta.FinalPrice))
	}
	if !meta.StartTime.Before(meta.EndTime) {
		return nil, stepErr(StepVerifyAmount, ErrInvalidRange)
	}

	var (
		booking        *model.Booking
		payment        *model.Payment
		bookingCreated bool
		paymentCreated bool
		voucherApplied bool
		failedStep     string
	)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// create_booking
		failedStep = StepCreateBooking
		booking = &model.Booking{
			ID:         meta.BookingID,
			ClientID:   meta.ClientID,
			ProviderID: meta.ProviderID,
			StartTime:  meta.StartTime,
			EndTime:    meta.EndTime,
			Price:      meta.Price,
			Status:     model.BookingStatusPending,
			Platform:   meta.Platform,
		}

		created, err := s.bookingRepo.CreateIfAbsent(ctx, booking)
		if err != nil {
			return err
		}
		bookingCreated = created

		if !created {
			existing, err := s.bookingRepo.GetByID(ctx, meta.BookingID)
			if err != nil {
				return err
			}
			if existing == nil || existing.ClientID != meta.ClientID || existing.ProviderID != meta.ProviderID {
				return fmt.Errorf("%w: booking %s exists with different parties", ErrInvalidRequest, meta.BookingID)
			}
			booking = existing
		}

		// create_payment
		failedStep = StepCreatePayment
		transactionID := status.TransactionID
		payment = &model.Payment{
			BookingID:       meta.BookingID,
			OrderID:         result.OrderID,
			Amount:          meta.FinalPrice,
			Status:          model.PaymentStatusSuccess,
			TransactionID:   &transactionID,
			GatewayResponse: result.Raw,
		}

		created, err = s.paymentRepo.CreateIfAbsent(ctx, payment)
		if err != nil {
			return err
		}
		paymentCreated = created

		if !created {
			existing, err := s.paymentRepo.GetByBookingID(ctx, meta.BookingID)
			if err != nil {
				return err
			}
			if existing == nil || existing.TransactionID == nil || *existing.TransactionID != transactionID {
				return fmt.Errorf("%w: transaction %s is recorded for another booking", ErrInvalidRequest, transactionID)
			}
			payment = existing
		}

		// apply_voucher
		if !meta.HasVoucher() {
			return nil
		}

		failedStep = StepApplyVoucher
		_, err = s.vouchers.TrackUsage(ctx, TrackUsageInput{
			VoucherID:       *meta.VoucherID,
			BookingID:       meta.BookingID,
			UserID:          meta.ClientID,
			DiscountApplied: meta.DiscountAmount,
			OriginalPrice:   meta.Price,
			FinalPrice:      meta.FinalPrice,
		})
		switch {
		case err == nil:
			voucherApplied = true
		case errors.Is(err, ErrVoucherAlreadyApplied):
		default:
			return err
		}

		return nil
	})
	if err != nil {
		return nil, stepErr(failedStep, err)
	}

	replayed := !bookingCreated && !paymentCreated && !voucherApplied

	// notify
	if paymentCreated {
		data := s.notifications.BookingData(ctx, booking)
		data.Price = formatting.FormatRupiah(meta.FinalPrice)

		if err := s.notifications.EmitBookingEvent(ctx, booking, model.NotificationBookingRequest, data, model.RoleClient); err != nil {
			s.logger.Error("Payment callback step failed",
				zap.String("op", OpHandleCallback),
				zap.String("step", StepNotify),
				zap.String("booking_id", booking.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Payment callback processed",
		zap.String("order_id", result.OrderID),
		zap.String("booking_id", booking.ID.String()),
		zap.String("transaction_id", status.TransactionID),
		zap.Int64("amount", payment.Amount),
		zap.Bool("replayed", replayed),
	)

	return &CallbackOutcome{
		Booking:  booking,
		Payment:  payment,
		Replayed: replayed,
		Status:   status.TransactionStatus,
	}, nil
}

// resolveMetadata берёт метаданные, сохранённые при создании платежа; клиентские - только если серверных нет
func (s *PaymentService) resolveMetadata(ctx context.Context, orderID string, clientMeta *model.PaymentMetadata) (*model.PaymentMetadata, error) {
	stored, err := s.intents.Load(ctx, orderID)
	if err != nil {
		s.logger.Warn("Failed to load payment intent", zap.String("order_id", orderID), zap.Error(err))
	}

	meta := stored
	if meta == nil {
		if clientMeta == nil {
			return nil, fmt.Errorf("%w: no payment metadata for order %s", ErrInvalidRequest, orderID)
		}
		s.logger.Warn("Using client payment metadata", zap.String("order_id", orderID))
		copied := *clientMeta
		meta = &copied
	}

	if meta.OrderID != "" && meta.OrderID != orderID {
		return nil, fmt.Errorf("%w: metadata belongs to order %s", ErrInvalidRequest, meta.OrderID)
	}
	meta.OrderID = orderID

	orderBookingID, err := BookingIDFromOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if meta.BookingID == uuid.Nil {
		meta.BookingID = orderBookingID
	}
	if meta.BookingID != orderBookingID {
		return nil, fmt.Errorf("%w: booking id does not match order %s", ErrInvalidRequest, orderID)
	}

	if meta.ClientID == uuid.Nil || meta.ProviderID == uuid.Nil {
		return nil, fmt.Errorf("%w: metadata without client or provider", ErrInvalidRequest)
	}

	return meta, nil
}

func (s *PaymentService) notifyPaymentFailed(ctx context.Context, meta *model.PaymentMetadata) {
	data := TemplateData{Price: formatting.FormatRupiah(meta.FinalPrice)}
	if provider, err := s.userRepo.GetProvider(ctx, meta.ProviderID); err == nil && provider != nil {
		data.ProviderName = provider.DisplayName
	}

	if _, err := s.notifications.Emit(ctx, model.ClientRecipient(meta.ClientID), model.NotificationPaymentFailed, data, nil); err != nil {
		s.logger.Warn("Failed to notify payment failure", zap.String("order_id", meta.OrderID), zap.Error(err))
	}
}

// WebhookPayload уведомление платёжного шлюза
type WebhookPayload struct {
	OrderID           string
	TransactionID     string
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	GrossAmount       string
	SignatureKey      string
	Raw               json.RawMessage
}

// WebhookOutcome итог обработки webhook
type WebhookOutcome struct {
	BookingID      uuid.UUID
	PaymentStatus  model.PaymentStatus
	PaymentUpdated bool
	Confirmed      bool
}

// HandleWebhook обновляет статус платежа и подтверждает бронирование.
// Шлюз доставляет события как минимум один раз, повторный вызов безопасен.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload WebhookPayload) (*WebhookOutcome, error) {
	if s.verifier != nil && !s.verifier.Verify(payload.OrderID, payload.StatusCode, payload.GrossAmount, payload.SignatureKey) {
		s.logger.Warn("Webhook signature rejected", zap.String("order_id", payload.OrderID))
		return nil, ErrInvalidSignature
	}

	bookingID, err := BookingIDFromOrderID(payload.OrderID)
	if err != nil {
		s.logger.Warn("Webhook with unknown order", zap.String("order_id", payload.OrderID))
		return nil, fmt.Errorf("%w: %v", ErrBookingNotFound, err)
	}

	stepErr := func(step string, err error) error {
		s.logger.Error("Payment webhook step failed",
			zap.String("op", OpHandleWebhook),
			zap.String("step", step),
			zap.String("booking_id", bookingID.String()),
			zap.String("order_id", payload.OrderID),
			zap.Error(err),
		)
		return &StepError{Op: OpHandleWebhook, Step: step, BookingID: bookingID, OrderID: payload.OrderID, Err: err}
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, stepErr(StepLoadBooking, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	outcome := &WebhookOutcome{
		BookingID:     bookingID,
		PaymentStatus: MapPaymentStatus(payload.TransactionStatus, payload.FraudStatus),
	}

	var transactionID *string
	if payload.TransactionID != "" {
		transactionID = &payload.TransactionID
	}

	var raw []byte
	if len(payload.Raw) > 0 {
		raw = payload.Raw
	}

	if outcome.PaymentStatus != model.PaymentStatusPending {
		updated, err := s.paymentRepo.UpdateStatus(ctx, bookingID, outcome.PaymentStatus, transactionID, raw)
		if err != nil {
			return nil, stepErr(StepUpdatePayment, err)
		}
		outcome.PaymentUpdated = updated
	}

	if IsSettled(payload.TransactionStatus) && outcome.PaymentStatus == model.PaymentStatusSuccess {
		confirmed, err := s.bookingRepo.UpdateStatus(ctx, bookingID,
			[]model.BookingStatus{model.BookingStatusPending}, model.BookingStatusConfirmed, nil, nil)
		if err != nil {
			return nil, stepErr(StepConfirm, err)
		}

		// nil означает, что бронирование уже не в pending: повтор или другой поток успел раньше
		if confirmed != nil {
			outcome.Confirmed = true
			s.emit(ctx, confirmed, model.NotificationBookingPayment, model.RoleProvider)
		}
	}

	if outcome.PaymentStatus == model.PaymentStatusFailed && outcome.PaymentUpdated {
		s.emit(ctx, booking, model.NotificationPaymentFailed, model.RoleClient)
	}

	s.logger.Info("Payment webhook processed",
		zap.String("order_id", payload.OrderID),
		zap.String("booking_id", bookingID.String()),
		zap.String("transaction_status", payload.TransactionStatus),
		zap.String("payment_status", string(outcome.PaymentStatus)),
		zap.Bool("confirmed", outcome.Confirmed),
	)

	return outcome, nil
}

func (s *PaymentService) emit(ctx context.Context, booking *model.Booking, t model.NotificationType, primary model.RecipientRole) {
	data := s.notifications.BookingData(ctx, booking)
	if payment, err := s.paymentRepo.GetByBookingID(ctx, booking.ID); err == nil && payment != nil {
		data.Price = formatting.FormatRupiah(payment.Amount)
	}

	if err := s.notifications.EmitBookingEvent(ctx, booking, t, data, primary); err != nil {
		s.logger.Warn("Failed to emit payment notification",
			zap.String("booking_id", booking.ID.String()),
			zap.String("type", string(t)),
			zap.Error(err),
		)
	}
}
