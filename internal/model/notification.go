package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationBookingRequest             NotificationType = "booking_request"
	NotificationBookingPayment             NotificationType = "booking_payment"
	NotificationBookingAccepted            NotificationType = "booking_accepted"
	NotificationBookingRejected            NotificationType = "booking_rejected"
	NotificationBookingCancelled           NotificationType = "booking_cancelled"
	NotificationBookingRescheduleRequested NotificationType = "booking_reschedule_requested"
	NotificationBookingRescheduled         NotificationType = "booking_rescheduled"
	NotificationBookingCompleted           NotificationType = "booking_completed"
	NotificationItemsReceived              NotificationType = "items_received"
	NotificationPaymentFailed              NotificationType = "payment_failed"
	NotificationNewMessage                 NotificationType = "new_message"
)

// AllNotificationTypes полный список типов; для каждого обязаны существовать оба шаблона
var AllNotificationTypes = []NotificationType{
	NotificationBookingRequest,
	NotificationBookingPayment,
	NotificationBookingAccepted,
	NotificationBookingRejected,
	NotificationBookingCancelled,
	NotificationBookingRescheduleRequested,
	NotificationBookingRescheduled,
	NotificationBookingCompleted,
	NotificationItemsReceived,
	NotificationPaymentFailed,
	NotificationNewMessage,
}

type RecipientRole string

const (
	RoleClient   RecipientRole = "client"
	RoleProvider RecipientRole = "provider"
)

// Recipient адресат уведомления: либо пользователь, либо стример
type Recipient struct {
	Role RecipientRole
	ID   uuid.UUID
}

func ClientRecipient(userID uuid.UUID) Recipient {
	return Recipient{Role: RoleClient, ID: userID}
}

func ProviderRecipient(providerID uuid.UUID) Recipient {
	return Recipient{Role: RoleProvider, ID: providerID}
}

// Notification создаётся один раз, дальше меняется только is_read
type Notification struct {
	ID         uuid.UUID        `json:"id"`
	UserID     *uuid.UUID       `json:"user_id,omitempty"`
	ProviderID *uuid.UUID       `json:"provider_id,omitempty"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	BookingID  *uuid.UUID       `json:"booking_id,omitempty"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Recipient восстанавливает адресата из записи
func (n *Notification) Recipient() Recipient {
	if n.ProviderID != nil {
		return ProviderRecipient(*n.ProviderID)
	}
	if n.UserID != nil {
		return ClientRecipient(*n.UserID)
	}
	return Recipient{}
}
