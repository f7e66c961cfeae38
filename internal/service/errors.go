package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// Ошибки валидации
	ErrInvalidRange      = errors.New("start time must be before end time")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrForbiddenContent  = errors.New("message contains forbidden contact details")
	ErrAmountMismatch    = errors.New("paid amount does not match expected price")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrRescheduleTooLate = errors.New("too late to reschedule booking")
	ErrLinkCodeInvalid   = errors.New("telegram link code is invalid or expired")

	// Конфликты состояния
	ErrScheduleConflict        = errors.New("time range overlaps an accepted booking")
	ErrProviderUnavailable     = errors.New("provider is not available at this time")
	ErrInvalidTransition       = errors.New("invalid booking status transition")
	ErrRescheduleLimitExceeded = errors.New("booking has already been rescheduled")
	ErrRatingRequired          = errors.New("booking must be rated before completion")
	ErrVoucherAlreadyApplied   = errors.New("voucher already applied to this booking")
	ErrVoucherDepleted         = errors.New("voucher is no longer available")
	ErrAlreadyRated            = errors.New("booking has already been rated")

	// Не найдено
	ErrBookingNotFound      = errors.New("booking not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrProviderNotFound     = errors.New("provider not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrForbidden = errors.New("forbidden")

	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// ErrorKind класс ошибки, по которому контроллер выбирает HTTP статус
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindNotFound       ErrorKind = "not_found"
	KindForbidden      ErrorKind = "forbidden"
	KindGateway        ErrorKind = "gateway"
	KindInfrastructure ErrorKind = "infrastructure"
)

var errorKinds = []struct {
	kind ErrorKind
	errs []error
}{
	{KindValidation, []error{
		ErrInvalidRange, ErrInvalidRequest, ErrInvalidRating, ErrForbiddenContent,
		ErrAmountMismatch, ErrInvalidSignature, ErrRescheduleTooLate, ErrLinkCodeInvalid,
	}},
	{KindConflict, []error{
		ErrScheduleConflict, ErrProviderUnavailable, ErrInvalidTransition, ErrRescheduleLimitExceeded,
		ErrRatingRequired, ErrVoucherAlreadyApplied, ErrVoucherDepleted, ErrAlreadyRated,
	}},
	{KindNotFound, []error{ErrBookingNotFound, ErrConversationNotFound, ErrProviderNotFound, ErrNotificationNotFound}},
	{KindForbidden, []error{ErrForbidden}},
	{KindGateway, []error{ErrGatewayUnavailable}},
}

// Kind классифицирует ошибку; всё неизвестное считается инфраструктурной ошибкой
func Kind(err error) ErrorKind {
	for _, group := range errorKinds {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.kind
			}
		}
	}
	return KindInfrastructure
}

// Шаги обработки успешной оплаты
const (
	StepVerifyPayment = "verify_payment"
	StepVerifyAmount  = "verify_amount"
	StepCreateBooking = "create_booking"
	StepCreatePayment = "create_payment"
	StepApplyVoucher  = "apply_voucher"
	StepNotify        = "notify"
	StepLoadBooking   = "load_booking"
	StepUpdatePayment = "update_payment"
	StepConfirm       = "confirm_booking"
)

// StepError ошибка многошагового сценария с указанием упавшего шага
type StepError struct {
	Op        string
	Step      string
	BookingID uuid.UUID
	OrderID   string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s failed (booking %s, order %s): %v", e.Op, e.Step, e.BookingID, e.OrderID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep возвращает имя упавшего шага, если ошибка пришла из многошагового сценария
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
