package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentStoreSaveAndLoad(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	store := NewIntentStore(db)
	ctx := context.Background()

	meta := &model.PaymentMetadata{
		BookingID:  uuid.New(),
		ProviderID: uuid.New(),
		ClientID:   uuid.New(),
		StartTime:  time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		Platform:   "tiktok",
		Price:      100000,
		FinalPrice: 100000,
		OrderID:    "LS_x_1",
	}
	payload, err := json.Marshal(meta)
	require.NoError(t, err)

	mockRedis.ExpectSet("payment_intent:LS_x_1", string(payload), 24*time.Hour).SetVal("OK")
	mockRedis.ExpectGet("payment_intent:LS_x_1").SetVal(string(payload))

	require.NoError(t, store.Save(ctx, meta, 24*time.Hour))

	loaded, err := store.Load(ctx, "LS_x_1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, meta.BookingID, loaded.BookingID)
	assert.Equal(t, meta.FinalPrice, loaded.FinalPrice)
	assert.True(t, meta.StartTime.Equal(loaded.StartTime))

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestIntentStoreLoadMissing(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	store := NewIntentStore(db)

	mockRedis.ExpectGet("payment_intent:LS_missing_1").RedisNil()

	loaded, err := store.Load(context.Background(), "LS_missing_1")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestIntentStoreLoadError(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	store := NewIntentStore(db)

	mockRedis.ExpectGet("payment_intent:LS_x_1").SetErr(errors.New("connection refused"))

	loaded, err := store.Load(context.Background(), "LS_x_1")
	assert.Error(t, err)
	assert.Nil(t, loaded)
}
