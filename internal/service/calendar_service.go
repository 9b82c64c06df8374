package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/repository"
)

// CalendarService собирает ленту календаря: виртуальные вхождения
// повторяющихся серий плюс обычные события из отдельного хранилища.
type CalendarService struct {
	slotRepo  repository.SlotRepository
	eventRepo repository.EventRepository

	// Часовой пояс отображения. Используется ровно один раз —
	// при материализации вхождений; внутри движка поясов нет.
	loc *time.Location

	expandOpts recur.Options
}

func NewCalendarService(
	slotRepo repository.SlotRepository,
	eventRepo repository.EventRepository,
	loc *time.Location,
	dedupeIdentical bool,
) *CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{
		slotRepo:  slotRepo,
		eventRepo: eventRepo,
		loc:       loc,
		expandOpts: recur.Options{
			Location:        loc,
			DedupeIdentical: dedupeIdentical,
		},
	}
}

// AgendaItem — один элемент ленты: либо вхождение серии (Recurring=true,
// ID — виртуальный токен), либо хранимое событие (ID — UUID строки).
type AgendaItem struct {
	ID         string    `json:"id"`
	CalendarID string    `json:"calendar_id"`
	Title      string    `json:"title"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`

	Color        string   `json:"color,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Description  string   `json:"description,omitempty"`

	Recurring      bool           `json:"recurring"`
	SeriesWeekdays []time.Weekday `json:"series_weekdays,omitempty"`
}

// Agenda возвращает слитую ленту календаря за окно дат [from, to]
// (границы включительно), отсортированную по началу. Результат
// пересчитывается на каждый вызов и не кешируется: у вхождений нет
// собственной хранимой идентичности.
//
// Перевёрнутое окно отклоняется до обращения к хранилищу.
func (s *CalendarService) Agenda(
	ctx context.Context,
	calendarID string,
	from, to recur.CivilDate,
) ([]AgendaItem, error) {
	if to.Before(from) {
		return nil, recur.ErrInvalidTimeRange
	}

	rows, err := s.slotRepo.ListByCalendar(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	slots := model.EngineSlots(rows)
	occurrences, err := recur.Expand(slots, from, to, s.expandOpts)
	if err != nil {
		return nil, err
	}

	// Серии пересчитываются из текущего состояния слотов на каждое чтение.
	seriesBySlot := make(map[string]recur.Series)
	for _, series := range recur.GroupSiblings(slots) {
		for _, member := range series.Slots {
			seriesBySlot[member.ID] = series
		}
	}

	items := make([]AgendaItem, 0, len(occurrences))
	for _, occ := range occurrences {
		series := seriesBySlot[occ.SlotID]
		items = append(items, AgendaItem{
			ID:             recur.EncodeOccurrenceID(occ.CalendarID, occ.Day, occ.SlotID),
			CalendarID:     occ.CalendarID,
			Title:          occ.Title,
			StartAt:        occ.StartAt,
			EndAt:          occ.EndAt,
			Color:          occ.Color,
			Participants:   occ.Participants,
			Recurring:      true,
			SeriesWeekdays: series.Weekdays,
		})
	}

	// Окно для хранимых событий: [from 00:00, to+1 00:00) в поясе отображения.
	windowStart := from.At(0, s.loc)
	windowEnd := to.AddDays(1).At(0, s.loc)

	events, err := s.eventRepo.ListByCalendarRange(ctx, calendarID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for i := range events {
		items = append(items, eventToAgendaItem(&events[i], s.loc))
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].StartAt.Equal(items[j].StartAt) {
			return items[i].StartAt.Before(items[j].StartAt)
		}
		return items[i].Title < items[j].Title
	})

	return items, nil
}

func eventToAgendaItem(e *model.Event, loc *time.Location) AgendaItem {
	item := AgendaItem{
		ID:          e.ID.String(),
		CalendarID:  e.CalendarID,
		Title:       e.Title,
		StartAt:     e.StartAt.In(loc),
		EndAt:       e.EndAt.In(loc),
		Description: e.Description,
	}
	if e.Color != nil {
		item.Color = *e.Color
	}
	return item
}
