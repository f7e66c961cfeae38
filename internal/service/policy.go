package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Значения бизнес-политики по умолчанию
const (
	DefaultFullRefundWindow    = 24 * time.Hour
	DefaultHalfRefundWindow    = 3 * time.Hour
	DefaultRescheduleMinNotice = 6 * time.Hour
	DefaultMaxReschedules      = 1
)

// Policy правила отмены и переноса бронирований.
// Границы включительные в пользу клиента: ровно 24ч до начала дают 100%.
type Policy struct {
	FullRefundWindow    time.Duration `yaml:"full_refund_window"`
	HalfRefundWindow    time.Duration `yaml:"half_refund_window"`
	RescheduleMinNotice time.Duration `yaml:"reschedule_min_notice"`
	MaxReschedules      int           `yaml:"max_reschedules"`
}

func DefaultPolicy() Policy {
	return Policy{
		FullRefundWindow:    DefaultFullRefundWindow,
		HalfRefundWindow:    DefaultHalfRefundWindow,
		RescheduleMinNotice: DefaultRescheduleMinNotice,
		MaxReschedules:      DefaultMaxReschedules,
	}
}

// LoadPolicy читает YAML и накладывает его на значения по умолчанию.
// Пустой путь означает политику по умолчанию.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return policy, fmt.Errorf("read policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return policy, err
	}

	return policy, nil
}

// Validate проверяет согласованность окон
func (p Policy) Validate() error {
	if p.HalfRefundWindow <= 0 || p.FullRefundWindow <= p.HalfRefundWindow {
		return fmt.Errorf("invalid refund windows: full=%s half=%s", p.FullRefundWindow, p.HalfRefundWindow)
	}
	if p.RescheduleMinNotice < 0 {
		return fmt.Errorf("invalid reschedule notice: %s", p.RescheduleMinNotice)
	}
	if p.MaxReschedules < 0 {
		return fmt.Errorf("invalid max reschedules: %d", p.MaxReschedules)
	}
	return nil
}

// RefundPercent процент возврата в зависимости от времени до начала стрима
func (p Policy) RefundPercent(untilStart time.Duration) int {
	switch {
	case untilStart >= p.FullRefundWindow:
		return 100
	case untilStart >= p.HalfRefundWindow:
		return 50
	default:
		return 0
	}
}

// RefundAmount сумма возврата в рупиях, округление вниз
func RefundAmount(paid int64, percent int) int64 {
	return paid * int64(percent) / 100
}

// CanReschedule проверяет минимальный срок до начала; границу включает
func (p Policy) CanReschedule(untilStart time.Duration) bool {
	return untilStart >= p.RescheduleMinNotice
}
