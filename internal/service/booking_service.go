package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/formatting"
	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService struct {
	tx               Transactor
	bookingRepo      BookingStore
	paymentRepo      PaymentStore
	userRepo         UserStore
	availabilityRepo AvailabilityStore
	ratingRepo       RatingStore
	vouchers         *VoucherService
	notifications    *NotificationService
	policy           Policy
	logger           *zap.Logger
	now              func() time.Time
}

func NewBookingService(
	tx Transactor,
	bookingRepo BookingStore,
	paymentRepo PaymentStore,
	userRepo UserStore,
	availabilityRepo AvailabilityStore,
	ratingRepo RatingStore,
	vouchers *VoucherService,
	notifications *NotificationService,
	policy Policy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:               tx,
		bookingRepo:      bookingRepo,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		availabilityRepo: availabilityRepo,
		ratingRepo:       ratingRepo,
		vouchers:         vouchers,
		notifications:    notifications,
		policy:           policy,
		logger:           logger,
		now:              time.Now,
	}
}

// BookingCreateRequest запрос на бронирование; все поля кроме VoucherCode и StreamCredentials обязательны
type BookingCreateRequest struct {
	ClientID          uuid.UUID
	ProviderID        uuid.UUID
	StartTime         time.Time
	EndTime           time.Time
	Price             int64
	Platform          string
	VoucherCode       string
	StreamCredentials *string
}

func (r BookingCreateRequest) validate() error {
	if r.ClientID == uuid.Nil || r.ProviderID == uuid.Nil {
		return fmt.Errorf("%w: client and provider are required", ErrInvalidRequest)
	}
	if !r.StartTime.Before(r.EndTime) {
		return ErrInvalidRange
	}
	if r.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Platform) == "" {
		return fmt.Errorf("%w: platform is required", ErrInvalidRequest)
	}
	return nil
}

// CreateBooking создаёт бронирование в статусе pending.
// Проверяет окно доступности стримера и пересечение с уже принятыми бронированиями.
func (s *BookingService) CreateBooking(ctx context.Context, req BookingCreateRequest) (*model.Booking, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if !req.StartTime.After(s.now()) {
		return nil, fmt.Errorf("%w: booking must start in the future", ErrInvalidRequest)
	}

	provider, err := s.userRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	if err := s.checkSchedule(ctx, req.ProviderID, req.StartTime, req.EndTime, uuid.Nil); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.VoucherCode) != "" {
		validation, err := s.vouchers.Validate(ctx, req.VoucherCode, req.Price)
		if err != nil {
			return nil, fmt.Errorf("validate voucher: %w", err)
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: voucher %s", ErrInvalidRequest, validation.Reason)
		}
	}

	booking := &model.Booking{
		ClientID:          req.ClientID,
		ProviderID:        req.ProviderID,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Price:             req.Price,
		Status:            model.BookingStatusPending,
		Platform:          req.Platform,
		StreamCredentials: req.StreamCredentials,
	}

	if _, err := s.bookingRepo.CreateIfAbsent(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	booking.Provider = provider

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("client_id", req.ClientID.String()),
		zap.String("provider_id", req.ProviderID.String()),
		zap.Time("start_time", req.StartTime),
		zap.Int64("price", req.Price),
	)

	s.notify(ctx, booking, model.NotificationBookingRequest, model.RoleClient, nil)

	return booking, nil
}

// checkSchedule проверяет окно доступности и пересечение с принятыми бронированиями
func (s *BookingService) checkSchedule(ctx context.Context, providerID uuid.UUID, start, end time.Time, exclude uuid.UUID) error {
	windows, err := s.availabilityRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return fmt.Errorf("list availability: %w", err)
	}

	loc := formatting.Location()
	localStart, localEnd := start.In(loc), end.In(loc)

	available := false
	for _, w := range windows {
		if w.Covers(localStart, localEnd) {
			available = true
			break
		}
	}
	if !available {
		return ErrProviderUnavailable
	}

	overlapping, err := s.bookingRepo.FindOverlappingAccepted(ctx, providerID, start, end, exclude)
	if err != nil {
		return fmt.Errorf("find overlapping bookings: %w", err)
	}
	if len(overlapping) > 0 {
		s.logger.Info("Schedule conflict",
			zap.String("provider_id", providerID.String()),
			zap.String("conflicting_booking_id", overlapping[0].BookingID.String()),
		)
		return ErrScheduleConflict
	}

	return nil
}

// AcceptBooking принимает бронирование (из pending или confirmed) и фиксирует слот стримера
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, actorUserID uuid.UUID) (*model.Booking, error) {
	booking, err := s.loadForProvider(ctx, bookingID, actorUserID)
	if err != nil {
		return nil, err
	}

	from := []model.BookingStatus{model.BookingStatusPending, model.BookingStatusConfirmed}
	if booking.Status != model.BookingStatusPending && booking.Status != model.BookingStatusConfirmed {
		return nil, ErrInvalidTransition
	}

	var accepted *model.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, model.BookingStatusAccepted, nil, nil)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrInvalidTransition
		}

		if err := s.bookingRepo.InsertAccepted(ctx, &model.AcceptedBooking{
			BookingID:  updated.ID,
			ProviderID: updated.ProviderID,
			StartTime:  updated.StartTime,
			EndTime:    updated.EndTime,
		}); err != nil {
			return err
		}

		accepted = updated
		return nil
	})
	if err != nil {
		return nil, s.transitionError("accept booking", err)
	}

	s.logger.Info("Booking accepted",
		zap.String("booking_id", bookingID.String()),
		zap.String("provider_id", accepted.ProviderID.String()),
	)

	s.notify(ctx, accepted, model.NotificationBookingAccepted, model.RoleClient, nil)

	return accepted, nil
}

// RejectBooking отклоняет бронирование; оплаченная сумма возвращается полностью
func (s *BookingService) RejectBooking(ctx context.Context, bookingID, actorUserID uuid.UUID, reason string) (*model.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidRequest)
	}

	booking, err := s.loadForProvider(ctx, bookingID, actorUserID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(booking.Status, model.BookingStatusRejected) {
		return nil, ErrInvalidTransition
	}

	refund := 100
	rejected, err := s.bookingRepo.UpdateStatus(ctx, bookingID, model.SourcesFor(model.BookingStatusRejected), model.BookingStatusRejected, &reason, &refund)
	if err != nil {
		return nil, fmt.Errorf("reject booking: %w", err)
	}
	if rejected == nil {
		return nil, ErrInvalidTransition
	}

	s.logger.Info("Booking rejected",
		zap.String("booking_id", bookingID.String()),
		zap.String("reason", reason),
	)

	s.notify(ctx, rejected, model.NotificationBookingRejected, model.RoleClient, nil)

	return rejected, nil
}

// CancelOrRescheduleRequest запрос на отмену или перенос
type CancelOrRescheduleRequest struct {
	BookingID    uuid.UUID
	ActorUserID  uuid.UUID
	Reason       string
	IsReschedule bool
	NewStartTime *time.Time
	NewEndTime   *time.Time
}

// CancellationResult итог отмены или запроса переноса
type CancellationResult struct {
	Booking       *model.Booking `json:"booking"`
	Rescheduled   bool           `json:"rescheduled"`
	RefundPercent int            `json:"refund_percent"`
	RefundAmount  int64          `json:"refund_amount"`
}

// CancelOrReschedule отменяет бронирование с расчётом возврата или запрашивает перенос
func (s *BookingService) CancelOrReschedule(ctx context.Context, req CancelOrRescheduleRequest) (*CancellationResult, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidRequest)
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	role, err := s.participantRole(ctx, booking, req.ActorUserID)
	if err != nil {
		return nil, err
	}

	untilStart := booking.StartTime.Sub(s.now())

	if req.IsReschedule {
		return s.requestReschedule(ctx, booking, req, reason, role, untilStart)
	}

	return s.cancel(ctx, booking, reason, role, untilStart)
}

func (s *BookingService) requestReschedule(
	ctx context.Context,
	booking *model.Booking,
	req CancelOrRescheduleRequest,
	reason string,
	role model.RecipientRole,
	untilStart time.Duration,
) (*CancellationResult, error) {
	if booking.RescheduleCount >= s.policy.MaxReschedules {
		return nil, ErrRescheduleLimitExceeded
	}

	if !model.CanTransition(booking.Status, model.BookingStatusRescheduleRequested) {
		return nil, ErrInvalidTransition
	}

	if !s.policy.CanReschedule(untilStart) {
		return nil, ErrRescheduleTooLate
	}

	if req.NewStartTime == nil || req.NewEndTime == nil {
		return nil, fmt.Errorf("%w: new start and end time are required", ErrInvalidRequest)
	}
	newStart, newEnd := *req.NewStartTime, *req.NewEndTime
	if !newStart.Before(newEnd) {
		return nil, ErrInvalidRange
	}
	if !newStart.After(s.now()) {
		return nil, fmt.Errorf("%w: new time must be in the future", ErrInvalidRequest)
	}

	if err := s.checkSchedule(ctx, booking.ProviderID, newStart, newEnd, booking.ID); err != nil {
		return nil, err
	}

	var updated *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookingRepo.RequestReschedule(ctx, booking.ID,
			model.SourcesFor(model.BookingStatusRescheduleRequested), req.ActorUserID,
			reason, newStart, newEnd, s.policy.MaxReschedules)
		if err != nil {
			return err
		}
		if b == nil {
			return s.staleTransition(ctx, booking.ID)
		}

		if err := s.bookingRepo.DeleteAccepted(ctx, booking.ID); err != nil {
			return err
		}

		updated = b
		return nil
	})
	if err != nil {
		return nil, s.transitionError("request reschedule", err)
	}

	s.logger.Info("Booking reschedule requested",
		zap.String("booking_id", booking.ID.String()),
		zap.String("requested_by", string(role)),
		zap.Time("new_start_time", newStart),
	)

	s.notify(ctx, updated, model.NotificationBookingRescheduleRequested, counterparty(role), nil)

	return &CancellationResult{Booking: updated, Rescheduled: true}, nil
}

// staleTransition объясняет, почему условный UPDATE не нашёл строку
func (s *BookingService) staleTransition(ctx context.Context, bookingID uuid.UUID) error {
	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if current != nil && current.RescheduleCount >= s.policy.MaxReschedules {
		return ErrRescheduleLimitExceeded
	}
	return ErrInvalidTransition
}

func (s *BookingService) cancel(
	ctx context.Context,
	booking *model.Booking,
	reason string,
	role model.RecipientRole,
	untilStart time.Duration,
) (*CancellationResult, error) {
	if !model.CanTransition(booking.Status, model.BookingStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	// Отмена стримером не должна штрафовать клиента
	percent := s.policy.RefundPercent(untilStart)
	if role == model.RoleProvider {
		percent = 100
	}

	payment, err := s.paymentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	var refund int64
	if payment != nil && payment.Status == model.PaymentStatusSuccess {
		refund = RefundAmount(payment.Amount, percent)
	}

	var cancelled *model.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, model.SourcesFor(model.BookingStatusCancelled), model.BookingStatusCancelled, &reason, &percent)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrInvalidTransition
		}

		if err := s.bookingRepo.DeleteAccepted(ctx, booking.ID); err != nil {
			return err
		}

		cancelled = b
		return nil
	})
	if err != nil {
		return nil, s.transitionError("cancel booking", err)
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("cancelled_by", string(role)),
		zap.Duration("until_start", untilStart),
		zap.Int("refund_percent", percent),
		zap.Int64("refund_amount", refund),
	)

	s.notify(ctx, cancelled, model.NotificationBookingCancelled, counterparty(role), func(data *TemplateData) {
		data.RefundPercent = strconv.Itoa(percent)
		data.Refund = formatting.FormatRupiah(refund)
	})

	return &CancellationResult{
		Booking:       cancelled,
		RefundPercent: percent,
		RefundAmount:  refund,
	}, nil
}

// RespondReschedule решает запрос переноса: approve переносит бронирование, иначе оно отменяется с полным возвратом.
// Отвечать может только вторая сторона.
func (s *BookingService) RespondReschedule(ctx context.Context, bookingID, actorUserID uuid.UUID, approve bool) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	role, err := s.participantRole(ctx, booking, actorUserID)
	if err != nil {
		return nil, err
	}

	if booking.Status != model.BookingStatusRescheduleRequested {
		return nil, ErrInvalidTransition
	}

	if booking.RescheduleBy != nil && *booking.RescheduleBy == actorUserID {
		return nil, fmt.Errorf("%w: reschedule must be answered by the other party", ErrForbidden)
	}

	if !approve {
		return s.declineReschedule(ctx, booking, role)
	}

	var rescheduled *model.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookingRepo.ApplyReschedule(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrInvalidTransition
		}

		if err := s.bookingRepo.InsertAccepted(ctx, &model.AcceptedBooking{
			BookingID:  b.ID,
			ProviderID: b.ProviderID,
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
		}); err != nil {
			return err
		}

		rescheduled = b
		return nil
	})
	if err != nil {
		return nil, s.transitionError("apply reschedule", err)
	}

	s.logger.Info("Booking rescheduled",
		zap.String("booking_id", bookingID.String()),
		zap.Time("start_time", rescheduled.StartTime),
	)

	s.notify(ctx, rescheduled, model.NotificationBookingRescheduled, counterparty(role), func(data *TemplateData) {
		data.NewSchedule = formatting.FormatDateTime(rescheduled.StartTime)
	})

	return rescheduled, nil
}

func (s *BookingService) declineReschedule(ctx context.Context, booking *model.Booking, role model.RecipientRole) (*model.Booking, error) {
	reason := "Jadwal ulang ditolak"
	percent := 100

	cancelled, err := s.bookingRepo.UpdateStatus(ctx, booking.ID,
		[]model.BookingStatus{model.BookingStatusRescheduleRequested}, model.BookingStatusCancelled, &reason, &percent)
	if err != nil {
		return nil, fmt.Errorf("decline reschedule: %w", err)
	}
	if cancelled == nil {
		return nil, ErrInvalidTransition
	}

	var refund int64
	if payment, err := s.paymentRepo.GetByBookingID(ctx, booking.ID); err != nil {
		s.logger.Warn("Failed to load payment for refund", zap.String("booking_id", booking.ID.String()), zap.Error(err))
	} else if payment != nil && payment.Status == model.PaymentStatusSuccess {
		refund = payment.Amount
	}

	s.logger.Info("Booking reschedule declined", zap.String("booking_id", booking.ID.String()))

	s.notify(ctx, cancelled, model.NotificationBookingCancelled, counterparty(role), func(data *TemplateData) {
		data.RefundPercent = strconv.Itoa(percent)
		data.Refund = formatting.FormatRupiah(refund)
	})

	return cancelled, nil
}

// CompleteBooking завершает принятое бронирование; перед этим клиент должен поставить оценку
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID, actorUserID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	role, err := s.participantRole(ctx, booking, actorUserID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(booking.Status, model.BookingStatusCompleted) {
		return nil, ErrInvalidTransition
	}

	rating, err := s.ratingRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	if rating == nil {
		return nil, ErrRatingRequired
	}

	completed, err := s.bookingRepo.UpdateStatus(ctx, bookingID,
		model.SourcesFor(model.BookingStatusCompleted), model.BookingStatusCompleted, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}
	if completed == nil {
		return nil, ErrInvalidTransition
	}

	s.logger.Info("Booking completed",
		zap.String("booking_id", bookingID.String()),
		zap.Int("rating", rating.Score),
	)

	s.notify(ctx, completed, model.NotificationBookingCompleted, counterparty(role), nil)

	return completed, nil
}

// RateBookingRequest оценка клиента
type RateBookingRequest struct {
	BookingID uuid.UUID
	ClientID  uuid.UUID
	Score     int
	Comment   string
}

// RateBooking сохраняет оценку клиента. Оценить можно принятое или завершённое бронирование.
func (s *BookingService) RateBooking(ctx context.Context, req RateBookingRequest) (*model.Rating, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if booking.ClientID != req.ClientID {
		return nil, ErrForbidden
	}

	if booking.Status != model.BookingStatusAccepted && booking.Status != model.BookingStatusCompleted {
		return nil, ErrInvalidTransition
	}

	rating := &model.Rating{
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		ProviderID: booking.ProviderID,
		Score:      req.Score,
		Comment:    strings.TrimSpace(req.Comment),
	}

	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}

	s.logger.Info("Booking rated",
		zap.String("booking_id", booking.ID.String()),
		zap.Int("score", req.Score),
	)

	return rating, nil
}

// MarkItemsReceived стример подтверждает получение товаров для стрима
func (s *BookingService) MarkItemsReceived(ctx context.Context, bookingID, actorUserID uuid.UUID) (*model.Booking, error) {
	booking, err := s.loadForProvider(ctx, bookingID, actorUserID)
	if err != nil {
		return nil, err
	}

	if booking.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	if booking.ItemsReceived {
		return booking, nil
	}

	marked, err := s.bookingRepo.MarkItemsReceived(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("mark items received: %w", err)
	}
	if !marked {
		return nil, ErrBookingNotFound
	}
	booking.ItemsReceived = true

	s.logger.Info("Booking items received", zap.String("booking_id", bookingID.String()))

	s.notify(ctx, booking, model.NotificationItemsReceived, model.RoleClient, nil)

	return booking, nil
}

// Get получает бронирование для участника
func (s *BookingService) Get(ctx context.Context, bookingID, actorUserID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if _, err := s.participantRole(ctx, booking, actorUserID); err != nil {
		return nil, err
	}

	provider, err := s.userRepo.GetProvider(ctx, booking.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	booking.Provider = provider

	return booking, nil
}

// ListForUser получает бронирования пользователя как клиента и, если он стример, как стримера
func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error) {
	bookings, err := s.bookingRepo.ListByClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list client bookings: %w", err)
	}

	provider, err := s.userRepo.GetProviderByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}

	if provider != nil {
		providerBookings, err := s.bookingRepo.ListByProvider(ctx, provider.ID)
		if err != nil {
			return nil, fmt.Errorf("list provider bookings: %w", err)
		}
		bookings = append(bookings, providerBookings...)
	}

	return bookings, nil
}

// loadForProvider загружает бронирование и проверяет, что actor - его стример
func (s *BookingService) loadForProvider(ctx context.Context, bookingID, actorUserID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	provider, err := s.userRepo.GetProviderByUserID(ctx, actorUserID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil || provider.ID != booking.ProviderID {
		return nil, ErrForbidden
	}

	booking.Provider = provider
	return booking, nil
}

// participantRole определяет роль пользователя в бронировании
func (s *BookingService) participantRole(ctx context.Context, booking *model.Booking, userID uuid.UUID) (model.RecipientRole, error) {
	if booking.ClientID == userID {
		return model.RoleClient, nil
	}

	provider, err := s.userRepo.GetProviderByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get provider: %w", err)
	}
	if provider != nil && provider.ID == booking.ProviderID {
		return model.RoleProvider, nil
	}

	return "", ErrForbidden
}

// transitionError переводит ошибки хранилища в ошибки сервиса
func (s *BookingService) transitionError(op string, err error) error {
	if errors.Is(err, repository.ErrOverlap) {
		return ErrScheduleConflict
	}
	if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrRescheduleLimitExceeded) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func counterparty(role model.RecipientRole) model.RecipientRole {
	if role == model.RoleClient {
		return model.RoleProvider
	}
	return model.RoleClient
}

// notify отправляет уведомление после успешного перехода; ошибки только логируются
func (s *BookingService) notify(
	ctx context.Context,
	booking *model.Booking,
	notificationType model.NotificationType,
	primary model.RecipientRole,
	customize func(*TemplateData),
) {
	if s.notifications == nil {
		return
	}

	data := s.notifications.BookingData(ctx, booking)
	if customize != nil {
		customize(&data)
	}

	if err := s.notifications.EmitBookingEvent(ctx, booking, notificationType, data, primary); err != nil {
		s.logger.Warn("Failed to emit booking notification",
			zap.String("booking_id", booking.ID.String()),
			zap.String("type", string(notificationType)),
			zap.Error(err),
		)
	}
}
