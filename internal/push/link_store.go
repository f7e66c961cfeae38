package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const linkCodeKeyPrefix = "telegram_link:"

// LinkCodeStore хранит одноразовые коды привязки чата в redis
type LinkCodeStore struct {
	rdb *redis.Client
}

func NewLinkCodeStore(rdb *redis.Client) *LinkCodeStore {
	return &LinkCodeStore{rdb: rdb}
}

func (s *LinkCodeStore) SaveLinkCode(ctx context.Context, code string, providerID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, linkCodeKeyPrefix+code, providerID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("save link code: %w", err)
	}
	return nil
}

// TakeLinkCode читает и удаляет код одной командой
func (s *LinkCodeStore) TakeLinkCode(ctx context.Context, code string) (uuid.UUID, bool, error) {
	value, err := s.rdb.GetDel(ctx, linkCodeKeyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("take link code: %w", err)
	}

	providerID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("parse link code value: %w", err)
	}

	return providerID, true, nil
}
