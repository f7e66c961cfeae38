package service

import (
	"testing"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/formatting"
	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// testEnv собирает все сервисы поверх общих фейков с управляемыми часами
type testEnv struct {
	t   *testing.T
	db  *memDB
	now time.Time

	publisher *fakePublisher
	pusher    *fakePusher
	processor *mockProcessor
	intents   *fakeIntentStore

	vouchers      *VoucherService
	notifications *NotificationService
	bookings      *BookingService
	payments      *PaymentService
	messaging     *MessagingService

	client       model.Profile
	providerUser model.Profile
	provider     model.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	db := newMemDB()

	env := &testEnv{
		t:         t,
		db:        db,
		now:       time.Date(2025, 3, 10, 9, 0, 0, 0, formatting.Location()),
		publisher: &fakePublisher{},
		pusher:    &fakePusher{},
		processor: &mockProcessor{},
		intents:   newFakeIntentStore(),
	}
	clock := func() time.Time { return env.now }

	env.client = model.Profile{ID: uuid.New(), FullName: "Siti Rahma", Email: "siti@example.com"}
	env.providerUser = model.Profile{ID: uuid.New(), FullName: "Budi Santoso", Email: "budi@example.com"}
	env.provider = model.Provider{ID: uuid.New(), UserID: env.providerUser.ID, DisplayName: "Budi Live", HourlyRate: 50000}

	db.profiles[env.client.ID] = env.client
	db.profiles[env.providerUser.ID] = env.providerUser
	db.providers[env.provider.ID] = env.provider

	// Стример доступен круглые сутки всю неделю
	for weekday := 0; weekday < 7; weekday++ {
		db.availability = append(db.availability, model.Availability{
			ID:          uuid.New(),
			ProviderID:  env.provider.ID,
			Weekday:     weekday,
			StartMinute: 0,
			EndMinute:   1440,
			IsActive:    true,
		})
	}

	users := fakeUserStore{db: db}
	bookingStore := fakeBookingStore{db: db}
	paymentStore := fakePaymentStore{db: db}
	tx := fakeTx{db: db}

	env.vouchers = NewVoucherService(fakeVoucherStore{db: db}, logger)
	env.vouchers.now = clock

	env.notifications = NewNotificationService(fakeNotificationStore{db: db}, users, env.publisher, env.pusher, logger)

	env.bookings = NewBookingService(
		tx,
		bookingStore,
		paymentStore,
		users,
		fakeAvailabilityStore{db: db},
		fakeRatingStore{db: db},
		env.vouchers,
		env.notifications,
		DefaultPolicy(),
		logger,
	)
	env.bookings.now = clock

	env.payments = NewPaymentService(
		tx,
		bookingStore,
		paymentStore,
		users,
		env.vouchers,
		env.notifications,
		env.processor,
		env.intents,
		nil,
		time.Hour,
		logger,
	)
	env.payments.now = clock

	env.messaging = NewMessagingService(fakeConversationStore{db: db}, users, env.notifications, logger)

	return env
}

// seedBooking кладёт бронирование напрямую в хранилище; accepted сразу занимает слот
func (e *testEnv) seedBooking(status model.BookingStatus, untilStart time.Duration) model.Booking {
	e.t.Helper()

	start := e.now.Add(untilStart)
	b := model.Booking{
		ID:         uuid.New(),
		ClientID:   e.client.ID,
		ProviderID: e.provider.ID,
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		Price:      100000,
		Status:     status,
		Platform:   "tiktok",
	}

	e.db.mu.Lock()
	defer e.db.mu.Unlock()

	e.db.bookings[b.ID] = b
	if status == model.BookingStatusAccepted {
		e.db.accepted[b.ID] = model.AcceptedBooking{
			BookingID:  b.ID,
			ProviderID: b.ProviderID,
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
		}
	}
	return b
}

func (e *testEnv) seedPayment(bookingID uuid.UUID, amount int64, status model.PaymentStatus) model.Payment {
	e.t.Helper()

	txID := "tx-" + bookingID.String()
	p := model.Payment{
		ID:            uuid.New(),
		BookingID:     bookingID,
		OrderID:       NewOrderID(bookingID, e.now),
		Amount:        amount,
		Status:        status,
		TransactionID: &txID,
	}

	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	e.db.payments[bookingID] = p
	return p
}

func (e *testEnv) seedVoucher(code string, discount int64, quantity int, expiresIn time.Duration) model.Voucher {
	e.t.Helper()

	v := model.Voucher{
		ID:                uuid.New(),
		Code:              code,
		DiscountAmount:    discount,
		TotalQuantity:     quantity,
		RemainingQuantity: quantity,
		IsActive:          true,
		ExpiresAt:         e.now.Add(expiresIn),
	}

	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	e.db.vouchers[v.ID] = v
	return v
}

func (e *testEnv) booking(id uuid.UUID) model.Booking {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return e.db.bookings[id]
}

func (e *testEnv) isAccepted(id uuid.UUID) bool {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	_, ok := e.db.accepted[id]
	return ok
}

func (e *testEnv) clientRecipient() model.Recipient {
	return model.ClientRecipient(e.client.ID)
}

func (e *testEnv) providerRecipient() model.Recipient {
	return model.ProviderRecipient(e.provider.ID)
}
