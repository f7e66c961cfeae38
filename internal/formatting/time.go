package formatting

import (
	"fmt"
	"time"
)

// DefaultTimezone часовой пояс продукта (WIB)
const DefaultTimezone = "Asia/Jakarta"

var location = mustLoadLocation(DefaultTimezone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Без tzdata WIB это фиксированный UTC+7
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// SetLocation меняет часовой пояс отображения (из конфига)
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load location %q: %w", name, err)
	}
	location = loc
	return nil
}

// Location текущий часовой пояс отображения
func Location() *time.Location {
	return location
}

// FormatDateTime форматирует дату и время: "Senin, 02 Jan 2006 15:04 WIB"
func FormatDateTime(t time.Time) string {
	local := t.In(location)
	return fmt.Sprintf("%s, %s %s", GetWeekdayName(int(local.Weekday())), local.Format("02 Jan 2006 15:04"), zoneName(local))
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.In(location).Format("02/01/2006")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end time.Time) string {
	s, e := start.In(location), end.In(location)
	return fmt.Sprintf("%s-%s %s", s.Format("15:04"), e.Format("15:04"), zoneName(s))
}

// FormatDuration форматирует длительность
func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%d menit", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d jam", hours)
	}
	return fmt.Sprintf("%d jam %d menit", hours, mins)
}

// GetWeekdayName возвращает название дня недели на индонезийском
func GetWeekdayName(weekday int) string {
	names := []string{
		"Minggu",
		"Senin",
		"Selasa",
		"Rabu",
		"Kamis",
		"Jumat",
		"Sabtu",
	}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "?"
}

func zoneName(t time.Time) string {
	name, _ := t.Zone()
	return name
}
