package recur

import "time"

const minutesPerDay = 24 * 60

// Slot — одно правило повторения: один день недели + время суток.
// Несколько слотов с общими названием и временем образуют серию (см. series.go).
// Это представление движка; хранимая модель живёт в internal/model.
type Slot struct {
	ID           string
	CalendarID   string
	DayOfWeek    time.Weekday // 0 = воскресенье
	StartMinute  int          // минута суток [0,1440)
	EndMinute    int          // минута суток [0,1440); меньше StartMinute = переход через полночь
	ActiveFrom   CivilDate
	ActiveUntil  *CivilDate // включительно; nil = без ограничения
	Title        string
	Participants []string
	Color        string
}

// CrossesMidnight сообщает, переходит ли слот через полночь на следующий день.
func (s Slot) CrossesMidnight() bool {
	return s.EndMinute < s.StartMinute
}

// ValidateMinutesOfDay проверяет, что обе минуты суток лежат в [0,1440).
func ValidateMinutesOfDay(start, end int) error {
	if start < 0 || start >= minutesPerDay {
		return ErrInvalidTimeRange
	}
	if end < 0 || end >= minutesPerDay {
		return ErrInvalidTimeRange
	}
	return nil
}

func (s Slot) validateMinutes() error {
	return ValidateMinutesOfDay(s.StartMinute, s.EndMinute)
}

// activeOn проверяет, действует ли правило в день d.
func (s Slot) activeOn(d CivilDate) bool {
	if d.Before(s.ActiveFrom) {
		return false
	}
	if s.ActiveUntil != nil && d.After(*s.ActiveUntil) {
		return false
	}
	return true
}
