package recur

import "time"

// Occurrence — один конкретный день серии внутри запрошенного окна.
// Никогда не сохраняется: пересчитывается на каждый запрос.
type Occurrence struct {
	// ID — виртуальный идентификатор (см. ident.go). Проставляется
	// на этапе сборки ответа, после группировки.
	ID     string
	SlotID string

	CalendarID string
	Title      string

	Day     CivilDate
	StartAt time.Time
	EndAt   time.Time

	StartMinute int
	EndMinute   int

	Participants []string
	Color        string

	SeriesKey      SeriesKey
	SeriesWeekdays []time.Weekday
}

// Options управляют разворачиванием правил.
type Options struct {
	// Location — часовой пояс, в котором материализуются моменты
	// StartAt/EndAt. nil = UTC. Внутри алгоритма пояс не используется:
	// все сравнения идут по календарным датам.
	Location *time.Location

	// DedupeIdentical схлопывает слоты с полностью совпадающими
	// (день недели, время, название, календарь). По умолчанию выключено:
	// исторически два одинаковых слота дают два отдельных вхождения.
	DedupeIdentical bool
}

// Expand разворачивает правила slots в конкретные вхождения по дням
// окна [from, to] (границы включительно).
//
// Для каждого дня D окна и каждого слота S вхождение возникает тогда и
// только тогда, когда weekday(D) == S.DayOfWeek и D лежит в
// [ActiveFrom, ActiveUntil]. Слот с EndMinute < StartMinute заканчивается
// на следующий календарный день. Пустое или перевёрнутое окно — пустой
// результат, не ошибка. Порядок вхождений не специфицирован.
func Expand(slots []Slot, from, to CivilDate, opts Options) ([]Occurrence, error) {
	for _, s := range slots {
		if err := s.validateMinutes(); err != nil {
			return nil, err
		}
	}

	occurrences := []Occurrence{}
	if to.Before(from) {
		return occurrences, nil
	}

	if opts.DedupeIdentical {
		slots = dedupeSlots(slots)
	}

	for day := from; !day.After(to); day = day.AddDays(1) {
		weekday := day.Weekday()
		for _, s := range slots {
			if s.DayOfWeek != weekday || !s.activeOn(day) {
				continue
			}

			endDay := day
			if s.CrossesMidnight() {
				endDay = day.AddDays(1)
			}

			occurrences = append(occurrences, Occurrence{
				SlotID:       s.ID,
				CalendarID:   s.CalendarID,
				Title:        s.Title,
				Day:          day,
				StartAt:      day.At(s.StartMinute, opts.Location),
				EndAt:        endDay.At(s.EndMinute, opts.Location),
				StartMinute:  s.StartMinute,
				EndMinute:    s.EndMinute,
				Participants: s.Participants,
				Color:        s.Color,
			})
		}
	}

	return occurrences, nil
}

func dedupeSlots(slots []Slot) []Slot {
	type slotKey struct {
		calendarID  string
		title       string
		dayOfWeek   time.Weekday
		startMinute int
		endMinute   int
	}

	seen := make(map[slotKey]struct{}, len(slots))
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		k := slotKey{s.CalendarID, s.Title, s.DayOfWeek, s.StartMinute, s.EndMinute}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
