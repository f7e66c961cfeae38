package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memDB общее in-memory состояние для фейковых хранилищ
type memDB struct {
	mu sync.Mutex

	bookings      map[uuid.UUID]model.Booking
	accepted      map[uuid.UUID]model.AcceptedBooking
	payments      map[uuid.UUID]model.Payment // по booking_id
	vouchers      map[uuid.UUID]model.Voucher
	usages        map[uuid.UUID]model.VoucherUsage
	notifications []model.Notification
	conversations map[uuid.UUID]model.Conversation
	messages      []model.Message
	profiles      map[uuid.UUID]model.Profile
	providers     map[uuid.UUID]model.Provider
	availability  []model.Availability
	ratings       map[uuid.UUID]model.Rating // по booking_id

	failNotificationsFor model.RecipientRole
}

func newMemDB() *memDB {
	return &memDB{
		bookings:      make(map[uuid.UUID]model.Booking),
		accepted:      make(map[uuid.UUID]model.AcceptedBooking),
		payments:      make(map[uuid.UUID]model.Payment),
		vouchers:      make(map[uuid.UUID]model.Voucher),
		usages:        make(map[uuid.UUID]model.VoucherUsage),
		conversations: make(map[uuid.UUID]model.Conversation),
		profiles:      make(map[uuid.UUID]model.Profile),
		providers:     make(map[uuid.UUID]model.Provider),
		ratings:       make(map[uuid.UUID]model.Rating),
	}
}

// fakeTx откатывает бронирования, платежи и ваучеры, если fn вернула ошибку
type fakeTx struct {
	db *memDB
}

func (t fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.db.mu.Lock()
	bookings := maps.Clone(t.db.bookings)
	accepted := maps.Clone(t.db.accepted)
	payments := maps.Clone(t.db.payments)
	vouchers := maps.Clone(t.db.vouchers)
	usages := maps.Clone(t.db.usages)
	t.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.db.mu.Lock()
		t.db.bookings, t.db.accepted, t.db.payments = bookings, accepted, payments
		t.db.vouchers, t.db.usages = vouchers, usages
		t.db.mu.Unlock()
		return err
	}
	return nil
}

type fakeBookingStore struct {
	db *memDB
}

func (s fakeBookingStore) CreateIfAbsent(_ context.Context, booking *model.Booking) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if _, ok := s.db.bookings[booking.ID]; ok {
		return false, nil
	}

	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	stored := *booking
	stored.Provider = nil
	s.db.bookings[booking.ID] = stored
	return true, nil
}

func (s fakeBookingStore) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s fakeBookingStore) ListByClient(_ context.Context, clientID uuid.UUID) ([]*model.Booking, error) {
	return s.list(func(b model.Booking) bool { return b.ClientID == clientID }), nil
}

func (s fakeBookingStore) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*model.Booking, error) {
	return s.list(func(b model.Booking) bool { return b.ProviderID == providerID }), nil
}

func (s fakeBookingStore) list(match func(model.Booking) bool) []*model.Booking {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*model.Booking
	for _, b := range s.db.bookings {
		if match(b) {
			out = append(out, &b)
		}
	}
	return out
}

func (s fakeBookingStore) UpdateStatus(_ context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus, reason *string, refundPercent *int) (*model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[id]
	if !ok || !slices.Contains(from, b.Status) {
		return nil, nil
	}

	b.Status = to
	if reason != nil {
		r := *reason
		b.Reason = &r
	}
	if refundPercent != nil {
		p := *refundPercent
		b.RefundPercent = &p
	}
	b.UpdatedAt = time.Now()
	s.db.bookings[id] = b
	return &b, nil
}

func (s fakeBookingStore) RequestReschedule(_ context.Context, id uuid.UUID, from []model.BookingStatus, requestedBy uuid.UUID, reason string, newStart, newEnd time.Time, maxReschedules int) (*model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[id]
	if !ok || !slices.Contains(from, b.Status) || b.RescheduleCount >= maxReschedules {
		return nil, nil
	}

	b.Status = model.BookingStatusRescheduleRequested
	b.Reason = &reason
	b.RequestedStartTime = &newStart
	b.RequestedEndTime = &newEnd
	b.RescheduleBy = &requestedBy
	b.RescheduleCount++
	s.db.bookings[id] = b
	return &b, nil
}

func (s fakeBookingStore) ApplyReschedule(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[id]
	if !ok || b.Status != model.BookingStatusRescheduleRequested || b.RequestedStartTime == nil {
		return nil, nil
	}

	b.Status = model.BookingStatusAccepted
	b.StartTime = *b.RequestedStartTime
	b.EndTime = *b.RequestedEndTime
	b.RequestedStartTime = nil
	b.RequestedEndTime = nil
	s.db.bookings[id] = b
	return &b, nil
}

func (s fakeBookingStore) MarkItemsReceived(_ context.Context, id uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[id]
	if !ok {
		return false, nil
	}
	b.ItemsReceived = true
	s.db.bookings[id] = b
	return true, nil
}

func (s fakeBookingStore) InsertAccepted(_ context.Context, accepted *model.AcceptedBooking) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.accepted[accepted.BookingID]; ok {
		return fmt.Errorf("insert accepted booking: %w", repository.ErrDuplicate)
	}
	for _, a := range s.db.accepted {
		if a.ProviderID == accepted.ProviderID && a.Overlaps(accepted.StartTime, accepted.EndTime) {
			return fmt.Errorf("insert accepted booking: %w: accepted_bookings_no_overlap", repository.ErrOverlap)
		}
	}
	s.db.accepted[accepted.BookingID] = *accepted
	return nil
}

func (s fakeBookingStore) DeleteAccepted(_ context.Context, bookingID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.accepted, bookingID)
	return nil
}

func (s fakeBookingStore) FindOverlappingAccepted(_ context.Context, providerID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*model.AcceptedBooking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*model.AcceptedBooking
	for _, a := range s.db.accepted {
		if a.ProviderID == providerID && a.BookingID != exclude && a.Overlaps(start, end) {
			out = append(out, &a)
		}
	}
	return out, nil
}

type fakePaymentStore struct {
	db *memDB
}

func (s fakePaymentStore) CreateIfAbsent(_ context.Context, payment *model.Payment) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.payments[payment.BookingID]; ok {
		return false, nil
	}
	for _, p := range s.db.payments {
		if p.TransactionID != nil && payment.TransactionID != nil && *p.TransactionID == *payment.TransactionID {
			return false, nil
		}
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	s.db.payments[payment.BookingID] = *payment
	return true, nil
}

func (s fakePaymentStore) GetByTransactionID(_ context.Context, transactionID string) (*model.Payment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, p := range s.db.payments {
		if p.TransactionID != nil && *p.TransactionID == transactionID {
			return &p, nil
		}
	}
	return nil, nil
}

func (s fakePaymentStore) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.payments[bookingID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s fakePaymentStore) UpdateStatus(_ context.Context, bookingID uuid.UUID, status model.PaymentStatus, transactionID *string, gatewayResponse []byte) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.payments[bookingID]
	if !ok || !p.Status.CanMoveTo(status) {
		return false, nil
	}

	p.Status = status
	if p.TransactionID == nil && transactionID != nil {
		id := *transactionID
		p.TransactionID = &id
	}
	if gatewayResponse != nil {
		p.GatewayResponse = gatewayResponse
	}
	s.db.payments[bookingID] = p
	return true, nil
}

type fakeVoucherStore struct {
	db *memDB
}

func (s fakeVoucherStore) Create(_ context.Context, voucher *model.Voucher) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, v := range s.db.vouchers {
		if strings.EqualFold(v.Code, voucher.Code) {
			return fmt.Errorf("create voucher: %w", repository.ErrDuplicate)
		}
	}
	if voucher.ID == uuid.Nil {
		voucher.ID = uuid.New()
	}
	s.db.vouchers[voucher.ID] = *voucher
	return nil
}

func (s fakeVoucherStore) GetByCode(_ context.Context, code string) (*model.Voucher, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, v := range s.db.vouchers {
		if strings.EqualFold(v.Code, code) {
			return &v, nil
		}
	}
	return nil, nil
}

func (s fakeVoucherStore) GetByID(_ context.Context, id uuid.UUID) (*model.Voucher, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	v, ok := s.db.vouchers[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s fakeVoucherStore) InsertUsage(_ context.Context, usage *model.VoucherUsage) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.usages {
		if u.VoucherID == usage.VoucherID && u.BookingID == usage.BookingID {
			return fmt.Errorf("insert voucher usage: %w: voucher_usages_voucher_booking_key", repository.ErrDuplicate)
		}
	}
	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}
	s.db.usages[usage.ID] = *usage
	return nil
}

func (s fakeVoucherStore) DeleteUsage(_ context.Context, usageID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.usages, usageID)
	return nil
}

func (s fakeVoucherStore) GetUsageByBooking(_ context.Context, voucherID, bookingID uuid.UUID) (*model.VoucherUsage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.usages {
		if u.VoucherID == voucherID && u.BookingID == bookingID {
			return &u, nil
		}
	}
	return nil, nil
}

// Decrement повторяет условный UPDATE ... WHERE remaining_quantity > 0
func (s fakeVoucherStore) Decrement(_ context.Context, voucherID uuid.UUID, now time.Time) (int, int, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	v, ok := s.db.vouchers[voucherID]
	if !ok || !v.UsableAt(now) {
		return 0, 0, false, nil
	}
	v.RemainingQuantity--
	s.db.vouchers[voucherID] = v
	return v.RemainingQuantity, v.TotalQuantity, true, nil
}

func (s fakeVoucherStore) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var count int64
	for id, v := range s.db.vouchers {
		if v.IsActive && !now.Before(v.ExpiresAt) {
			v.IsActive = false
			s.db.vouchers[id] = v
			count++
		}
	}
	return count, nil
}

func (db *memDB) usageCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.usages)
}

func (db *memDB) voucher(id uuid.UUID) model.Voucher {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.vouchers[id]
}

func (db *memDB) payment(bookingID uuid.UUID) (model.Payment, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.payments[bookingID]
	return p, ok
}

type fakeNotificationStore struct {
	db *memDB
}

func (s fakeNotificationStore) Create(_ context.Context, n *model.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.db.failNotificationsFor != "" && n.Recipient().Role == s.db.failNotificationsFor {
		return fmt.Errorf("notification store unavailable")
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	s.db.notifications = append(s.db.notifications, *n)
	return nil
}

func (s fakeNotificationStore) ListByRecipient(_ context.Context, recipient model.Recipient, onlyUnread bool) ([]*model.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*model.Notification
	for _, n := range s.db.notifications {
		if n.Recipient() == recipient && (!onlyUnread || !n.IsRead) {
			out = append(out, &n)
		}
	}
	return out, nil
}

func (s fakeNotificationStore) MarkRead(_ context.Context, id uuid.UUID, recipient model.Recipient) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i, n := range s.db.notifications {
		if n.ID == id && n.Recipient() == recipient {
			s.db.notifications[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (db *memDB) notificationsFor(recipient model.Recipient) []model.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []model.Notification
	for _, n := range db.notifications {
		if n.Recipient() == recipient {
			out = append(out, n)
		}
	}
	return out
}

func (db *memDB) notificationCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.notifications)
}

type fakeConversationStore struct {
	db *memDB
}

func (s fakeConversationStore) GetOrCreate(_ context.Context, clientID, providerID uuid.UUID) (*model.Conversation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, c := range s.db.conversations {
		if c.ClientID == clientID && c.ProviderID == providerID {
			return &c, nil
		}
	}

	c := model.Conversation{ID: uuid.New(), ClientID: clientID, ProviderID: providerID, CreatedAt: time.Now()}
	s.db.conversations[c.ID] = c
	return &c, nil
}

func (s fakeConversationStore) GetByID(_ context.Context, id uuid.UUID) (*model.Conversation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.conversations[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s fakeConversationStore) CreateMessage(_ context.Context, m *model.Message) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	s.db.messages = append(s.db.messages, *m)
	return nil
}

func (s fakeConversationStore) ListMessages(_ context.Context, conversationID uuid.UUID, limit int) ([]*model.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*model.Message
	for i := len(s.db.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := s.db.messages[i]
		if m.ConversationID == conversationID {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (s fakeConversationStore) MarkMessagesRead(_ context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var count int64
	for i, m := range s.db.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.IsRead {
			s.db.messages[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func (db *memDB) messageCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.messages)
}

type fakeUserStore struct {
	db *memDB
}

func (s fakeUserStore) GetProfile(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s fakeUserStore) GetProvider(_ context.Context, id uuid.UUID) (*model.Provider, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.providers[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s fakeUserStore) GetProviderByUserID(_ context.Context, userID uuid.UUID) (*model.Provider, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, p := range s.db.providers {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, nil
}

func (s fakeUserStore) LinkTelegramChat(_ context.Context, providerID uuid.UUID, chatID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.providers[providerID]
	if !ok {
		return fmt.Errorf("provider not found")
	}
	p.TelegramChatID = &chatID
	s.db.providers[providerID] = p
	return nil
}

func (s fakeUserStore) UnlinkTelegramChat(_ context.Context, chatID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var count int64
	for id, p := range s.db.providers {
		if p.TelegramChatID != nil && *p.TelegramChatID == chatID {
			p.TelegramChatID = nil
			s.db.providers[id] = p
			count++
		}
	}
	return count, nil
}

type fakeAvailabilityStore struct {
	db *memDB
}

func (s fakeAvailabilityStore) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*model.Availability, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*model.Availability
	for _, a := range s.db.availability {
		if a.ProviderID == providerID {
			out = append(out, &a)
		}
	}
	return out, nil
}

type fakeRatingStore struct {
	db *memDB
}

func (s fakeRatingStore) Create(_ context.Context, rating *model.Rating) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.ratings[rating.BookingID]; ok {
		return fmt.Errorf("create rating: %w", repository.ErrDuplicate)
	}
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	s.db.ratings[rating.BookingID] = *rating
	return nil
}

func (s fakeRatingStore) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*model.Rating, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.ratings[bookingID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

type fakeIntentStore struct {
	mu      sync.Mutex
	intents map[string]model.PaymentMetadata
}

func newFakeIntentStore() *fakeIntentStore {
	return &fakeIntentStore{intents: make(map[string]model.PaymentMetadata)}
}

func (s *fakeIntentStore) Save(_ context.Context, meta *model.PaymentMetadata, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[meta.OrderID] = *meta
	return nil
}

func (s *fakeIntentStore) Load(_ context.Context, orderID string) (*model.PaymentMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.intents[orderID]
	if !ok {
		return nil, nil
	}
	return &meta, nil
}

type fakeLinkCodeStore struct {
	mu    sync.Mutex
	codes map[string]uuid.UUID
	ttls  map[string]time.Duration
}

func newFakeLinkCodeStore() *fakeLinkCodeStore {
	return &fakeLinkCodeStore{codes: make(map[string]uuid.UUID), ttls: make(map[string]time.Duration)}
}

func (s *fakeLinkCodeStore) SaveLinkCode(_ context.Context, code string, providerID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = providerID
	s.ttls[code] = ttl
	return nil
}

func (s *fakeLinkCodeStore) TakeLinkCode(_ context.Context, code string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.codes[code]
	delete(s.codes, code)
	return id, ok, nil
}

type publishedEvent struct {
	Topic   string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *fakePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type pushedMessage struct {
	ChatID int64
	Text   string
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []pushedMessage
}

func (p *fakePusher) Push(_ context.Context, chatID int64, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, pushedMessage{ChatID: chatID, Text: text})
	return nil
}

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionToken, error) {
	args := m.Called(ctx, req)
	token, _ := args.Get(0).(*TransactionToken)
	return token, args.Error(1)
}

func (m *mockProcessor) CheckTransaction(ctx context.Context, orderID string) (*TransactionStatus, error) {
	args := m.Called(ctx, orderID)
	status, _ := args.Get(0).(*TransactionStatus)
	return status, args.Error(1)
}

type stubVerifier struct {
	valid bool
}

func (v stubVerifier) Verify(_, _, _, _ string) bool {
	return v.valid
}
