package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
)

// Интерфейсы хранилищ и внешних систем. Реализации живут в repository, gateway,
// realtime и push; в тестах подменяются фейками.

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BookingStore interface {
	CreateIfAbsent(ctx context.Context, booking *model.Booking) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.Booking, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus, reason *string, refundPercent *int) (*model.Booking, error)
	RequestReschedule(ctx context.Context, id uuid.UUID, from []model.BookingStatus, requestedBy uuid.UUID, reason string, newStart, newEnd time.Time, maxReschedules int) (*model.Booking, error)
	ApplyReschedule(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	MarkItemsReceived(ctx context.Context, id uuid.UUID) (bool, error)
	InsertAccepted(ctx context.Context, accepted *model.AcceptedBooking) error
	DeleteAccepted(ctx context.Context, bookingID uuid.UUID) error
	FindOverlappingAccepted(ctx context.Context, providerID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*model.AcceptedBooking, error)
}

type PaymentStore interface {
	CreateIfAbsent(ctx context.Context, payment *model.Payment) (bool, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status model.PaymentStatus, transactionID *string, gatewayResponse []byte) (bool, error)
}

type VoucherStore interface {
	Create(ctx context.Context, voucher *model.Voucher) error
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error)
	InsertUsage(ctx context.Context, usage *model.VoucherUsage) error
	DeleteUsage(ctx context.Context, usageID uuid.UUID) error
	GetUsageByBooking(ctx context.Context, voucherID, bookingID uuid.UUID) (*model.VoucherUsage, error)
	Decrement(ctx context.Context, voucherID uuid.UUID, now time.Time) (remaining, total int, ok bool, err error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipient model.Recipient, onlyUnread bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipient model.Recipient) (bool, error)
}

type ConversationStore interface {
	GetOrCreate(ctx context.Context, clientID, providerID uuid.UUID) (*model.Conversation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error)
	CreateMessage(ctx context.Context, m *model.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*model.Message, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
}

type UserStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error)
}

// TelegramLinkStore привязка чатов стримеров
type TelegramLinkStore interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error)
	LinkTelegramChat(ctx context.Context, providerID uuid.UUID, chatID int64) error
	UnlinkTelegramChat(ctx context.Context, chatID int64) (int64, error)
}

// LinkCodeStore одноразовые коды привязки Telegram
type LinkCodeStore interface {
	SaveLinkCode(ctx context.Context, code string, providerID uuid.UUID, ttl time.Duration) error
	TakeLinkCode(ctx context.Context, code string) (uuid.UUID, bool, error)
}

type AvailabilityStore interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Availability, error)
}

type RatingStore interface {
	Create(ctx context.Context, rating *model.Rating) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Rating, error)
}

// Publisher отправляет событие во внешний pub/sub
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Pusher доставляет текст уведомления в чат стримера
type Pusher interface {
	Push(ctx context.Context, chatID int64, text string) error
}

// TransactionRequest запрос на создание платежа во внешнем процессоре
type TransactionRequest struct {
	OrderID     string
	Amount      int64
	ClientName  string
	ClientEmail string
	Description string
}

// TransactionToken ответ процессора
type TransactionToken struct {
	Token       string
	RedirectURL string
}

// TransactionStatus состояние транзакции по данным шлюза
type TransactionStatus struct {
	OrderID           string
	TransactionID     string
	TransactionStatus string
	FraudStatus       string
	GrossAmount       int64
}

type PaymentProcessor interface {
	CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionToken, error)
	// CheckTransaction запрашивает у шлюза фактический статус заказа
	CheckTransaction(ctx context.Context, orderID string) (*TransactionStatus, error)
}

// IntentStore хранит метаданные платежа между созданием и callback
type IntentStore interface {
	Save(ctx context.Context, meta *model.PaymentMetadata, ttl time.Duration) error
	Load(ctx context.Context, orderID string) (*model.PaymentMetadata, error)
}

// SignatureVerifier проверяет подпись webhook
type SignatureVerifier interface {
	Verify(orderID, statusCode, grossAmount, signature string) bool
}
