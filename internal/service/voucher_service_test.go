package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherValidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedVoucher("PROMO20", 20000, 5, 30*24*time.Hour)
	env.seedVoucher("EMPTY", 20000, 0, 30*24*time.Hour)
	env.seedVoucher("OLD", 20000, 5, -time.Hour)
	env.seedVoucher("EDGE", 20000, 5, 0)
	off := env.seedVoucher("OFF", 20000, 5, 30*24*time.Hour)
	env.db.mu.Lock()
	off.IsActive = false
	env.db.vouchers[off.ID] = off
	env.db.mu.Unlock()

	tests := []struct {
		name      string
		code      string
		amount    int64
		wantValid bool
		reason    model.VoucherRejectReason
		discount  int64
		final     int64
	}{
		{"valid", "PROMO20", 100000, true, "", 20000, 80000},
		{"case insensitive", " promo20 ", 100000, true, "", 20000, 80000},
		{"discount capped by price", "PROMO20", 15000, true, "", 15000, 0},
		{"malformed code", "a!", 100000, false, model.VoucherReasonInvalidCode, 0, 100000},
		{"non-positive amount", "PROMO20", 0, false, model.VoucherReasonInvalidAmount, 0, 0},
		{"unknown", "MISSING", 100000, false, model.VoucherReasonNotFound, 0, 100000},
		{"inactive", "OFF", 100000, false, model.VoucherReasonInactive, 0, 100000},
		{"expired but still flagged active", "OLD", 100000, false, model.VoucherReasonExpired, 0, 100000},
		{"expires exactly now", "EDGE", 100000, false, model.VoucherReasonExpired, 0, 100000},
		{"depleted", "EMPTY", 100000, false, model.VoucherReasonDepleted, 0, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.vouchers.Validate(ctx, tt.code, tt.amount)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.reason, result.Reason)
			assert.Equal(t, tt.discount, result.DiscountAmount)
			assert.Equal(t, tt.final, result.FinalPrice)
		})
	}
}

func usageFor(voucher model.Voucher, bookingID, userID uuid.UUID) TrackUsageInput {
	return TrackUsageInput{
		VoucherID:       voucher.ID,
		BookingID:       bookingID,
		UserID:          userID,
		DiscountApplied: voucher.DiscountAmount,
		OriginalPrice:   100000,
		FinalPrice:      100000 - voucher.DiscountAmount,
	}
}

func TestTrackUsage_ConcurrentRedemptions(t *testing.T) {
	env := newTestEnv(t)
	voucher := env.seedVoucher("FLASH", 10000, 5, 24*time.Hour)

	const attempts = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		depleted  int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := env.vouchers.TrackUsage(context.Background(), usageFor(voucher, uuid.New(), env.client.ID))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrVoucherDepleted):
				depleted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, attempts-5, depleted)
	assert.Equal(t, 0, env.db.voucher(voucher.ID).RemainingQuantity)
	assert.Equal(t, 5, env.db.usageCount())

	_, err := env.vouchers.TrackUsage(context.Background(), usageFor(voucher, uuid.New(), env.client.ID))
	assert.ErrorIs(t, err, ErrVoucherDepleted)
}

func TestTrackUsage_SameBookingTwice(t *testing.T) {
	env := newTestEnv(t)
	voucher := env.seedVoucher("ONCE", 10000, 3, 24*time.Hour)
	bookingID := uuid.New()

	_, err := env.vouchers.TrackUsage(context.Background(), usageFor(voucher, bookingID, env.client.ID))
	require.NoError(t, err)

	_, err = env.vouchers.TrackUsage(context.Background(), usageFor(voucher, bookingID, env.client.ID))
	assert.ErrorIs(t, err, ErrVoucherAlreadyApplied)

	assert.Equal(t, 2, env.db.voucher(voucher.ID).RemainingQuantity)
	assert.Equal(t, 1, env.db.usageCount())
}

func TestTrackUsage_ExpiredVoucherRollsBackUsage(t *testing.T) {
	env := newTestEnv(t)
	voucher := env.seedVoucher("LATE", 10000, 3, -time.Minute)

	_, err := env.vouchers.TrackUsage(context.Background(), usageFor(voucher, uuid.New(), env.client.ID))
	assert.ErrorIs(t, err, ErrVoucherDepleted)

	assert.Equal(t, 3, env.db.voucher(voucher.ID).RemainingQuantity)
	assert.Zero(t, env.db.usageCount())
}

func TestTrackUsage_InconsistentAmounts(t *testing.T) {
	env := newTestEnv(t)
	voucher := env.seedVoucher("MATH", 10000, 3, 24*time.Hour)

	in := usageFor(voucher, uuid.New(), env.client.ID)
	in.FinalPrice = 1

	_, err := env.vouchers.TrackUsage(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, env.db.usageCount())
}

func TestVoucherCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	voucher, err := env.vouchers.Create(ctx, CreateVoucherInput{
		Code:           " ramadan25 ",
		DiscountAmount: 25000,
		Quantity:       10,
		ExpiresAt:      env.now.Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "RAMADAN25", voucher.Code)
	assert.Equal(t, 10, voucher.RemainingQuantity)
	assert.True(t, voucher.IsActive)

	_, err = env.vouchers.Create(ctx, CreateVoucherInput{
		Code:           "Ramadan25",
		DiscountAmount: 25000,
		Quantity:       10,
		ExpiresAt:      env.now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.vouchers.Create(ctx, CreateVoucherInput{
		Code:           "PAST",
		DiscountAmount: 25000,
		Quantity:       10,
		ExpiresAt:      env.now,
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDeactivateExpiredVouchers(t *testing.T) {
	env := newTestEnv(t)
	expired := env.seedVoucher("GONE", 10000, 3, -time.Hour)
	live := env.seedVoucher("LIVE", 10000, 3, time.Hour)

	count, err := env.vouchers.DeactivateExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.False(t, env.db.voucher(expired.ID).IsActive)
	assert.True(t, env.db.voucher(live.ID).IsActive)
}
