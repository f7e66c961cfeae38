package realtime

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Поддерживаемые транспорты
const (
	DriverRedis = "redis"
	DriverAMQP  = "amqp"
	DriverNone  = "none"
)

// Publisher публикует событие в топик внешнего pub/sub.
// Close освобождает соединение транспорта.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	io.Closer
}

// Options параметры выбора транспорта
type Options struct {
	Driver       string
	Redis        *redis.Client
	AMQPURL      string
	AMQPExchange string
}

// New создаёт publisher для выбранного драйвера
func New(opts Options, logger *zap.Logger) (Publisher, error) {
	switch opts.Driver {
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis publisher requires a redis client")
		}
		return NewRedisPublisher(opts.Redis), nil
	case DriverAMQP:
		return NewAMQPPublisher(opts.AMQPURL, opts.AMQPExchange)
	case DriverNone, "":
		logger.Info("Realtime publishing disabled")
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown realtime driver %q", opts.Driver)
	}
}

// Nop ничего не публикует
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

func (Nop) Close() error { return nil }
