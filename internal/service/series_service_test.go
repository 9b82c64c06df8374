package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Minimal schema for the query/update logic (sqlite-friendly).
	schema := []string{
		`CREATE TABLE calendars (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			theme_color TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE recurring_slots (
			id TEXT PRIMARY KEY,
			calendar_id TEXT NOT NULL,
			day_of_week INTEGER NOT NULL,
			start_minute INTEGER NOT NULL,
			end_minute INTEGER NOT NULL,
			active_from DATE NOT NULL,
			active_until DATE,
			title TEXT NOT NULL,
			reference_date DATE,
			participants TEXT,
			color TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE events (
			id TEXT PRIMARY KEY,
			calendar_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			start_at DATETIME NOT NULL,
			end_at DATETIME NOT NULL,
			color TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

func seedRaidNight(t *testing.T, svc *SeriesService, weekdays ...time.Weekday) []model.RecurringSlot {
	t.Helper()

	rows, err := svc.CreateSeries(context.Background(), CreateSeriesInput{
		CalendarID:   "gbti-main",
		Title:        "Raid Night",
		Weekdays:     weekdays,
		StartMinute:  20 * 60,
		EndMinute:    22 * 60,
		ActiveFrom:   recur.NewCivilDate(2024, time.January, 1),
		Participants: []string{"sora", "dan"},
		Color:        "#aa33ff",
	})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	return rows
}

func virtualRef(t *testing.T, calendarID, slotID string) recur.EventRef {
	t.Helper()

	token := recur.EncodeOccurrenceID(calendarID, recur.NewCivilDate(2024, time.January, 2), slotID)
	ref, err := recur.ParseEventRef(token)
	if err != nil {
		t.Fatalf("parse ref: %v", err)
	}
	return ref
}

func TestSeriesService_CreateSeries_RowPerWeekday(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	rows := seedRaidNight(t, svc, time.Tuesday, time.Thursday)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	var stored []model.RecurringSlot
	if err := db.Order("day_of_week ASC").Find(&stored).Error; err != nil {
		t.Fatalf("load slots: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored rows, got %d", len(stored))
	}
	if stored[0].DayOfWeek != int(time.Tuesday) || stored[1].DayOfWeek != int(time.Thursday) {
		t.Fatalf("unexpected weekdays: %d, %d", stored[0].DayOfWeek, stored[1].DayOfWeek)
	}
	for _, s := range stored {
		if s.Title != "Raid Night" || s.StartMinute != 20*60 || s.EndMinute != 22*60 {
			t.Fatalf("rows must share attributes: %+v", s)
		}
		names := s.ParticipantNames()
		if len(names) != 2 || names[0] != "sora" || names[1] != "dan" {
			t.Fatalf("unexpected participants: %v", names)
		}
	}
}

func TestSeriesService_Resolve_FindsWholeSeries(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	rows := seedRaidNight(t, svc, time.Tuesday, time.Thursday)

	series, err := svc.Resolve(context.Background(), virtualRef(t, "gbti-main", rows[0].ID.String()))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(series.Slots) != 2 {
		t.Fatalf("expected 2 members, got %d", len(series.Slots))
	}
	if len(series.Weekdays) != 2 || series.Weekdays[0] != time.Tuesday || series.Weekdays[1] != time.Thursday {
		t.Fatalf("unexpected weekdays: %v", series.Weekdays)
	}
}

func TestSeriesService_Resolve_UnknownSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	_, err := svc.Resolve(context.Background(), virtualRef(t, "gbti-main", "11111111-2222-3333-4444-555555555555"))
	if !errors.Is(err, recur.ErrSeriesNotFound) {
		t.Fatalf("expected ErrSeriesNotFound, got %v", err)
	}
}

func TestSeriesService_Resolve_CalendarMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	rows := seedRaidNight(t, svc, time.Tuesday)

	_, err := svc.Resolve(context.Background(), virtualRef(t, "another-calendar", rows[0].ID.String()))
	if !errors.Is(err, recur.ErrSeriesNotFound) {
		t.Fatalf("expected ErrSeriesNotFound, got %v", err)
	}
}

func TestSeriesService_UpdateSeries_AppliesToAllMembers(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	rows := seedRaidNight(t, svc, time.Tuesday, time.Thursday)
	ref := virtualRef(t, "gbti-main", rows[0].ID.String())

	title := "Mythic Raid"
	participants := []string{"sora"}
	if err := svc.UpdateSeries(context.Background(), ref, SeriesPatch{
		Title:        &title,
		Participants: &participants,
	}); err != nil {
		t.Fatalf("update series: %v", err)
	}

	var stored []model.RecurringSlot
	if err := db.Find(&stored).Error; err != nil {
		t.Fatalf("load slots: %v", err)
	}
	for _, s := range stored {
		if s.Title != "Mythic Raid" {
			t.Fatalf("member %s not retitled: %q", s.ID, s.Title)
		}
		names := s.ParticipantNames()
		if len(names) != 1 || names[0] != "sora" {
			t.Fatalf("member %s participants not updated: %v", s.ID, names)
		}
	}
}

func TestSeriesService_UpdateSeries_HalfTimeRangeRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	rows := seedRaidNight(t, svc, time.Tuesday)
	ref := virtualRef(t, "gbti-main", rows[0].ID.String())

	start := 10 * 60
	err := svc.UpdateSeries(context.Background(), ref, SeriesPatch{StartMinute: &start})
	if !errors.Is(err, recur.ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestSeriesService_TerminateThenExpand(t *testing.T) {
	db := newTestDB(t)
	slotRepo := repository.NewGormSlotRepository(db)
	svc := NewSeriesService(db, slotRepo)

	rows := seedRaidNight(t, svc, time.Tuesday, time.Thursday)
	ref := virtualRef(t, "gbti-main", rows[0].ID.String())

	cutoff := recur.NewCivilDate(2024, time.February, 15)
	if err := svc.Terminate(context.Background(), ref, cutoff); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	stored, err := slotRepo.ListByCalendar(context.Background(), "gbti-main")
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("terminate must not delete rows, got %d", len(stored))
	}

	// Окно через дату закрытия: вхождения только до неё включительно.
	occs, err := recur.Expand(
		model.EngineSlots(stored),
		recur.NewCivilDate(2024, time.February, 1),
		recur.NewCivilDate(2024, time.March, 31),
		recur.Options{},
	)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(occs) == 0 {
		t.Fatalf("expected occurrences before cutoff")
	}
	for _, occ := range occs {
		if occ.Day.After(cutoff) {
			t.Fatalf("occurrence after cutoff: %v", occ.Day)
		}
	}

	// Окно целиком после закрытия — пусто.
	after, err := recur.Expand(
		model.EngineSlots(stored),
		recur.NewCivilDate(2024, time.February, 16),
		recur.NewCivilDate(2024, time.March, 31),
		recur.Options{},
	)
	if err != nil {
		t.Fatalf("expand after cutoff: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("expected no occurrences after cutoff, got %d", len(after))
	}
}

func TestSeriesService_Terminate_KeepsEarlierUntil(t *testing.T) {
	db := newTestDB(t)
	slotRepo := repository.NewGormSlotRepository(db)
	svc := NewSeriesService(db, slotRepo)

	rows := seedRaidNight(t, svc, time.Tuesday, time.Thursday)

	// Четверговый слот уже закрыт раньше.
	earlier := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	var thuID string
	for _, r := range rows {
		if r.DayOfWeek == int(time.Thursday) {
			thuID = r.ID.String()
		}
	}
	if err := db.Model(&model.RecurringSlot{}).
		Where("id = ?", thuID).
		Update("active_until", earlier).Error; err != nil {
		t.Fatalf("preset active_until: %v", err)
	}

	ref := virtualRef(t, "gbti-main", rows[0].ID.String())
	if err := svc.Terminate(context.Background(), ref, recur.NewCivilDate(2024, time.February, 15)); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	var thu model.RecurringSlot
	if err := db.First(&thu, "id = ?", thuID).Error; err != nil {
		t.Fatalf("load thursday slot: %v", err)
	}
	if thu.ActiveUntil == nil {
		t.Fatalf("active_until must stay set")
	}
	if got := recur.FromDate(*thu.ActiveUntil); got != recur.NewCivilDate(2024, time.January, 31) {
		t.Fatalf("earlier active_until must not be extended, got %v", got)
	}
}

func TestSeriesService_ChangeWeekdays_PreservesRetainedRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	rows := seedRaidNight(t, svc, time.Monday, time.Wednesday)
	ref := virtualRef(t, "gbti-main", rows[0].ID.String())

	idByDay := map[int]string{}
	for _, r := range rows {
		idByDay[r.DayOfWeek] = r.ID.String()
	}

	// {пн, ср} -> {пн, ср, пт}: старые строки не трогаются, пятница добавляется.
	if err := svc.ChangeWeekdays(context.Background(), ref, []time.Weekday{time.Monday, time.Wednesday, time.Friday}); err != nil {
		t.Fatalf("change weekdays: %v", err)
	}

	var stored []model.RecurringSlot
	if err := db.Order("day_of_week ASC").Find(&stored).Error; err != nil {
		t.Fatalf("load slots: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(stored))
	}
	if stored[0].ID.String() != idByDay[int(time.Monday)] {
		t.Fatalf("monday row identity changed")
	}
	if stored[1].ID.String() != idByDay[int(time.Wednesday)] {
		t.Fatalf("wednesday row identity changed")
	}
	fri := stored[2]
	if fri.DayOfWeek != int(time.Friday) {
		t.Fatalf("expected friday row, got day %d", fri.DayOfWeek)
	}
	if fri.Title != "Raid Night" || fri.StartMinute != 20*60 || fri.EndMinute != 22*60 || fri.Color != "#aa33ff" {
		t.Fatalf("friday row must copy series attributes: %+v", fri)
	}

	// {пн, ср, пт} -> {пн, пт}: среда удаляется, остальные на месте.
	if err := svc.ChangeWeekdays(context.Background(), ref, []time.Weekday{time.Monday, time.Friday}); err != nil {
		t.Fatalf("change weekdays (remove): %v", err)
	}
	if err := db.Order("day_of_week ASC").Find(&stored).Error; err != nil {
		t.Fatalf("reload slots: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 rows after removal, got %d", len(stored))
	}
	if stored[0].DayOfWeek != int(time.Monday) || stored[1].DayOfWeek != int(time.Friday) {
		t.Fatalf("unexpected weekdays after removal: %d, %d", stored[0].DayOfWeek, stored[1].DayOfWeek)
	}
	if stored[0].ID.String() != idByDay[int(time.Monday)] {
		t.Fatalf("monday row identity changed on removal")
	}
}

func TestSeriesService_DeleteSeries(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	rows := seedRaidNight(t, svc, time.Tuesday, time.Thursday)
	ref := virtualRef(t, "gbti-main", rows[0].ID.String())

	if err := svc.DeleteSeries(context.Background(), ref); err != nil {
		t.Fatalf("delete series: %v", err)
	}

	var count int64
	if err := db.Model(&model.RecurringSlot{}).Count(&count).Error; err != nil {
		t.Fatalf("count slots: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected all member rows deleted, got %d", count)
	}

	// Повторная адресация той же серии — уже не найдено, а не no-op.
	if _, err := svc.Resolve(context.Background(), ref); !errors.Is(err, recur.ErrSeriesNotFound) {
		t.Fatalf("expected ErrSeriesNotFound after delete, got %v", err)
	}
}

func TestSeriesService_CreateSeries_InvalidMinutes(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db, repository.NewGormSlotRepository(db))

	_, err := svc.CreateSeries(context.Background(), CreateSeriesInput{
		CalendarID:  "gbti-main",
		Title:       "Bad",
		Weekdays:    []time.Weekday{time.Monday},
		StartMinute: 20 * 60,
		EndMinute:   1440,
		ActiveFrom:  recur.NewCivilDate(2024, time.January, 1),
	})
	if !errors.Is(err, recur.ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}
