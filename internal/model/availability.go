package model

import (
	"time"

	"github.com/google/uuid"
)

// Availability окно доступности стримера в течение недели
type Availability struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	Weekday     int       `json:"weekday"`      // 0 = Sunday, 6 = Saturday
	StartMinute int       `json:"start_minute"` // минуты от полуночи, 0-1439
	EndMinute   int       `json:"end_minute"`   // не включительно, до 1440
	IsActive    bool      `json:"is_active"`
}

// Covers проверяет, что интервал [start, end) целиком попадает в окно.
// start и end должны быть уже переведены в часовой пояс стримера.
func (a *Availability) Covers(start, end time.Time) bool {
	if !a.IsActive || int(start.Weekday()) != a.Weekday {
		return false
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	windowStart := dayStart.Add(time.Duration(a.StartMinute) * time.Minute)
	windowEnd := dayStart.Add(time.Duration(a.EndMinute) * time.Minute)

	return !start.Before(windowStart) && !end.After(windowEnd)
}
