package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/redis/go-redis/v9"
)

const intentKeyPrefix = "payment_intent:"

// IntentStore хранит метаданные платежа в redis до прихода callback
type IntentStore struct {
	rdb *redis.Client
}

func NewIntentStore(rdb *redis.Client) *IntentStore {
	return &IntentStore{rdb: rdb}
}

func intentKey(orderID string) string {
	return intentKeyPrefix + orderID
}

// Save сохраняет метаданные под order_id с TTL
func (s *IntentStore) Save(ctx context.Context, meta *model.PaymentMetadata, ttl time.Duration) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal payment intent: %w", err)
	}

	if err := s.rdb.Set(ctx, intentKey(meta.OrderID), string(payload), ttl).Err(); err != nil {
		return fmt.Errorf("save payment intent: %w", err)
	}

	return nil
}

// Load читает метаданные; nil, nil если ключ истёк или не существовал
func (s *IntentStore) Load(ctx context.Context, orderID string) (*model.PaymentMetadata, error) {
	payload, err := s.rdb.Get(ctx, intentKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load payment intent: %w", err)
	}

	var meta model.PaymentMetadata
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal payment intent: %w", err)
	}

	return &meta, nil
}
