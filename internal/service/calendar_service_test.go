package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/repository"
)

func TestCalendarService_Agenda_MergesSeriesAndEvents(t *testing.T) {
	db := newTestDB(t)
	slotRepo := repository.NewGormSlotRepository(db)
	eventRepo := repository.NewGormEventRepository(db)
	seriesSvc := NewSeriesService(db, slotRepo)
	calSvc := NewCalendarService(slotRepo, eventRepo, time.UTC, false)

	seedRaidNight(t, seriesSvc, time.Tuesday, time.Thursday)

	// Разовое событие в среду, между двумя вхождениями серии.
	event := model.Event{
		ID:         uuid.New(),
		CalendarID: "gbti-main",
		Title:      "Town Hall",
		StartAt:    time.Date(2024, time.January, 3, 10, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2024, time.January, 3, 11, 0, 0, 0, time.UTC),
	}
	if err := eventRepo.Create(context.Background(), &event); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	// Первая неделя января 2024: пн 1-е … вс 7-е.
	items, err := calSvc.Agenda(
		context.Background(),
		"gbti-main",
		recur.NewCivilDate(2024, time.January, 1),
		recur.NewCivilDate(2024, time.January, 7),
	)
	if err != nil {
		t.Fatalf("agenda: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items (tue, wed event, thu), got %d", len(items))
	}

	// Порядок по началу: вт 2-го 20:00, ср 3-го 10:00, чт 4-го 20:00.
	if !items[0].Recurring || items[0].Title != "Raid Night" {
		t.Fatalf("item 0 must be tuesday raid, got %+v", items[0])
	}
	if items[1].Recurring || items[1].Title != "Town Hall" {
		t.Fatalf("item 1 must be the plain event, got %+v", items[1])
	}
	if !items[2].Recurring {
		t.Fatalf("item 2 must be thursday raid, got %+v", items[2])
	}

	// Дни недели серии проставлены на каждом вхождении.
	wantDays := []time.Weekday{time.Tuesday, time.Thursday}
	for _, i := range []int{0, 2} {
		if len(items[i].SeriesWeekdays) != 2 ||
			items[i].SeriesWeekdays[0] != wantDays[0] ||
			items[i].SeriesWeekdays[1] != wantDays[1] {
			t.Fatalf("item %d series weekdays = %v, want %v", i, items[i].SeriesWeekdays, wantDays)
		}
	}

	// Виртуальный идентификатор обратим и ведёт на день вхождения.
	calID, day, slotID, err := recur.DecodeOccurrenceID(items[0].ID)
	if err != nil {
		t.Fatalf("decode virtual id: %v", err)
	}
	if calID != "gbti-main" || day != recur.NewCivilDate(2024, time.January, 2) || slotID == "" {
		t.Fatalf("unexpected decoded id: %q %v %q", calID, day, slotID)
	}

	// Идентификатор разового события — обычный UUID строки.
	if items[1].ID != event.ID.String() {
		t.Fatalf("plain event id = %q, want %q", items[1].ID, event.ID.String())
	}
}

func TestCalendarService_Agenda_InvertedWindowRejected(t *testing.T) {
	db := newTestDB(t)
	calSvc := NewCalendarService(
		repository.NewGormSlotRepository(db),
		repository.NewGormEventRepository(db),
		time.UTC,
		false,
	)

	_, err := calSvc.Agenda(
		context.Background(),
		"gbti-main",
		recur.NewCivilDate(2024, time.January, 10),
		recur.NewCivilDate(2024, time.January, 9),
	)
	if !errors.Is(err, recur.ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestCalendarService_Agenda_EmptyCalendar(t *testing.T) {
	db := newTestDB(t)
	calSvc := NewCalendarService(
		repository.NewGormSlotRepository(db),
		repository.NewGormEventRepository(db),
		time.UTC,
		false,
	)

	items, err := calSvc.Agenda(
		context.Background(),
		"nobody-here",
		recur.NewCivilDate(2024, time.January, 1),
		recur.NewCivilDate(2024, time.January, 31),
	)
	if err != nil {
		t.Fatalf("agenda: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty agenda, got %d items", len(items))
	}
}
