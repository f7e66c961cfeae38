package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending             BookingStatus = "pending"              // Оплата ещё не подтверждена
	BookingStatusConfirmed           BookingStatus = "confirmed"            // Оплачено, ждёт решения стримера
	BookingStatusAccepted            BookingStatus = "accepted"             // Стример принял бронирование
	BookingStatusCompleted           BookingStatus = "completed"            // Завершено
	BookingStatusCancelled           BookingStatus = "cancelled"            // Отменено
	BookingStatusRejected            BookingStatus = "rejected"             // Отклонено стримером
	BookingStatusRescheduleRequested BookingStatus = "reschedule_requested" // Запрошен перенос
)

// transitions описывает допустимые переходы состояний бронирования
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {
		BookingStatusConfirmed,
		BookingStatusAccepted,
		BookingStatusRejected,
		BookingStatusCancelled,
	},
	BookingStatusConfirmed: {
		BookingStatusAccepted,
		BookingStatusRejected,
		BookingStatusCancelled,
	},
	BookingStatusAccepted: {
		BookingStatusCompleted,
		BookingStatusCancelled,
		BookingStatusRescheduleRequested,
	},
	BookingStatusRescheduleRequested: {
		BookingStatusAccepted,
		BookingStatusCancelled,
	},
}

// CanTransition проверяет, разрешён ли переход from -> to
func CanTransition(from, to BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesFor возвращает все статусы, из которых можно попасть в to
func SourcesFor(to BookingStatus) []BookingStatus {
	var sources []BookingStatus
	for _, from := range []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusAccepted,
		BookingStatusRescheduleRequested,
	} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

// IsTerminal - из терминального статуса переходов нет
func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Booking struct {
	ID                 uuid.UUID     `json:"id"`
	ClientID           uuid.UUID     `json:"client_id"`
	ProviderID         uuid.UUID     `json:"provider_id"`
	StartTime          time.Time     `json:"start_time"`
	EndTime            time.Time     `json:"end_time"`
	Price              int64         `json:"price"` // в рупиях
	Status             BookingStatus `json:"status"`
	Reason             *string       `json:"reason,omitempty"` // причина отмены/переноса
	Platform           string        `json:"platform"`
	StreamCredentials  *string       `json:"stream_credentials,omitempty"`
	ItemsReceived      bool          `json:"items_received"`
	RescheduleCount    int           `json:"reschedule_count"`
	RequestedStartTime *time.Time    `json:"requested_start_time,omitempty"` // новое время при переносе
	RequestedEndTime   *time.Time    `json:"requested_end_time,omitempty"`
	RescheduleBy       *uuid.UUID    `json:"reschedule_by,omitempty"` // кто запросил перенос
	RefundPercent      *int          `json:"refund_percent,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Provider *Provider `json:"provider,omitempty"`
}

// Duration длительность стрима
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// AcceptedBooking денормализованная запись принятого бронирования для быстрой проверки пересечений
type AcceptedBooking struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// Overlaps проверяет пересечение полуинтервалов [start, end)
func (a *AcceptedBooking) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}
