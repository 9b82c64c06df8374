package recur

import (
	"sort"
	"time"
)

// SeriesKey — производный ключ серии. Не хранится: редактирование
// отдельных слотов может разделить или слить серии между чтениями,
// поэтому ключ пересчитывается из текущего состояния на каждый запрос.
type SeriesKey struct {
	CalendarID  string
	Title       string
	StartMinute int
	EndMinute   int
}

// Series — набор слотов-близнецов, вместе образующих одно логическое
// повторяющееся событие («Raid Night, вт и чт, 20:00–22:00»).
type Series struct {
	Key      SeriesKey
	Slots    []Slot
	Weekdays []time.Weekday // отсортированные уникальные дни недели участников
}

// KeyOf возвращает ключ серии для слота.
func KeyOf(s Slot) SeriesKey {
	return SeriesKey{
		CalendarID:  s.CalendarID,
		Title:       s.Title,
		StartMinute: s.StartMinute,
		EndMinute:   s.EndMinute,
	}
}

// GroupSiblings разбивает слоты на серии по ключу
// (календарь, название, время начала, время конца).
// Результат детерминирован: серии отсортированы по ключу,
// слоты внутри серии — по дню недели, затем по ID.
func GroupSiblings(slots []Slot) []Series {
	byKey := make(map[SeriesKey][]Slot)
	for _, s := range slots {
		k := KeyOf(s)
		byKey[k] = append(byKey[k], s)
	}

	series := make([]Series, 0, len(byKey))
	for k, members := range byKey {
		sort.Slice(members, func(i, j int) bool {
			if members[i].DayOfWeek != members[j].DayOfWeek {
				return members[i].DayOfWeek < members[j].DayOfWeek
			}
			return members[i].ID < members[j].ID
		})

		daySet := make(map[time.Weekday]struct{}, len(members))
		for _, m := range members {
			daySet[m.DayOfWeek] = struct{}{}
		}
		weekdays := make([]time.Weekday, 0, len(daySet))
		for d := range daySet {
			weekdays = append(weekdays, d)
		}
		sort.Slice(weekdays, func(i, j int) bool { return weekdays[i] < weekdays[j] })

		series = append(series, Series{Key: k, Slots: members, Weekdays: weekdays})
	}

	sort.Slice(series, func(i, j int) bool {
		a, b := series[i].Key, series[j].Key
		if a.CalendarID != b.CalendarID {
			return a.CalendarID < b.CalendarID
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		return a.EndMinute < b.EndMinute
	})

	return series
}

// FindSeriesBySlotID находит серию, содержащую слот с данным ID.
func FindSeriesBySlotID(series []Series, slotID string) (Series, bool) {
	for _, s := range series {
		for _, m := range s.Slots {
			if m.ID == slotID {
				return s, true
			}
		}
	}
	return Series{}, false
}
