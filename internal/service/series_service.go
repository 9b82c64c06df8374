package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/repository"
)

// SeriesService применяет правки к серии целиком: каждая операция
// затрагивает все слоты-близнецы атомарно, в одной транзакции.
// Сервис держит *gorm.DB напрямую, потому что массовые обновления
// нескольких строк должны уходить в базу одним блоком.
type SeriesService struct {
	db       *gorm.DB
	slotRepo repository.SlotRepository
}

func NewSeriesService(db *gorm.DB, slotRepo repository.SlotRepository) *SeriesService {
	return &SeriesService{db: db, slotRepo: slotRepo}
}

// CreateSeriesInput описывает новое повторяющееся событие.
type CreateSeriesInput struct {
	CalendarID   string
	Title        string
	Weekdays     []time.Weekday
	StartMinute  int
	EndMinute    int
	ActiveFrom   recur.CivilDate
	Participants []string
	Color        string
}

// CreateSeries создаёт серию: по одной строке на каждый выбранный день
// недели, все с общими названием, временем, цветом и участниками.
func (s *SeriesService) CreateSeries(ctx context.Context, in CreateSeriesInput) ([]model.RecurringSlot, error) {
	if err := recur.ValidateMinutesOfDay(in.StartMinute, in.EndMinute); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("create series: title is required")
	}

	days, err := normalizeWeekdays(in.Weekdays)
	if err != nil {
		return nil, err
	}

	rows := make([]model.RecurringSlot, 0, len(days))
	for _, day := range days {
		row := model.RecurringSlot{
			ID:            uuid.New(),
			CalendarID:    in.CalendarID,
			DayOfWeek:     int(day),
			StartMinute:   in.StartMinute,
			EndMinute:     in.EndMinute,
			ActiveFrom:    in.ActiveFrom.Date(),
			Title:         in.Title,
			ReferenceDate: in.ActiveFrom.Date(),
			Color:         in.Color,
		}
		row.SetParticipants(in.Participants)
		rows = append(rows, row)
	}

	if err := s.slotRepo.BulkInsert(ctx, rows); err != nil {
		return nil, fmt.Errorf("insert series slots: %w", err)
	}
	return rows, nil
}

// Resolve превращает виртуальную ссылку в серию по текущему состоянию
// слотов. Пустая серия (слот уже удалён) — ErrSeriesNotFound, а не
// успешный no-op.
func (s *SeriesService) Resolve(ctx context.Context, ref recur.EventRef) (recur.Series, error) {
	if ref.Kind != recur.RefVirtual {
		return recur.Series{}, recur.ErrMalformedIdentifier
	}

	anchor, err := s.slotRepo.GetByID(ctx, ref.SlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return recur.Series{}, recur.ErrSeriesNotFound
		}
		return recur.Series{}, fmt.Errorf("load slot: %w", err)
	}
	if anchor.CalendarID != ref.CalendarID {
		return recur.Series{}, recur.ErrSeriesNotFound
	}

	rows, err := s.slotRepo.ListByCalendar(ctx, anchor.CalendarID)
	if err != nil {
		return recur.Series{}, fmt.Errorf("list slots: %w", err)
	}

	groups := recur.GroupSiblings(model.EngineSlots(rows))
	series, ok := recur.FindSeriesBySlotID(groups, ref.SlotID)
	if !ok || len(series.Slots) == 0 {
		return recur.Series{}, recur.ErrSeriesNotFound
	}
	return series, nil
}

// SeriesPatch — частичное обновление серии. nil-поля не трогаются.
// Время меняется только парой: обе минуты либо заданы, либо нет.
type SeriesPatch struct {
	Title        *string
	StartMinute  *int
	EndMinute    *int
	Participants *[]string
	Color        *string
}

// UpdateSeries применяет патч к каждому слоту серии. Всё или ничего:
// если число затронутых строк разошлось с составом серии, транзакция
// откатывается с ErrConcurrentModification.
func (s *SeriesService) UpdateSeries(ctx context.Context, ref recur.EventRef, patch SeriesPatch) error {
	// Чистая валидация входа — до любого чтения из хранилища.
	if (patch.StartMinute == nil) != (patch.EndMinute == nil) {
		return recur.ErrInvalidTimeRange
	}
	if patch.StartMinute != nil {
		if err := recur.ValidateMinutesOfDay(*patch.StartMinute, *patch.EndMinute); err != nil {
			return err
		}
	}

	fields := map[string]any{}
	if patch.Title != nil {
		if *patch.Title == "" {
			return fmt.Errorf("update series: title must not be empty")
		}
		fields["title"] = *patch.Title
	}
	if patch.StartMinute != nil {
		fields["start_minute"] = *patch.StartMinute
		fields["end_minute"] = *patch.EndMinute
	}
	if patch.Participants != nil {
		var carrier model.RecurringSlot
		carrier.SetParticipants(*patch.Participants)
		fields["participants"] = carrier.Participants
	}
	if patch.Color != nil {
		fields["color"] = *patch.Color
	}
	series, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	ids := memberIDs(series)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.RecurringSlot{}).
			Where("id IN ?", ids).
			Updates(fields)
		if res.Error != nil {
			return fmt.Errorf("update series slots: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return recur.ErrConcurrentModification
		}
		return nil
	})
}

// Terminate закрывает серию с даты cutoff: проставляет activeUntil каждому
// слоту. История не удаляется, а слот с более ранним activeUntil не
// продлевается обратно.
func (s *SeriesService) Terminate(ctx context.Context, ref recur.EventRef, cutoff recur.CivilDate) error {
	series, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	ids := memberIDs(series)
	cutoffDate := cutoff.Date()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var present int64
		if err := tx.Model(&model.RecurringSlot{}).
			Where("id IN ?", ids).
			Count(&present).Error; err != nil {
			return fmt.Errorf("count series slots: %w", err)
		}
		if present != int64(len(ids)) {
			return recur.ErrConcurrentModification
		}

		err := tx.Model(&model.RecurringSlot{}).
			Where("id IN ?", ids).
			Where("active_until IS NULL OR active_until > ?", time.Time(cutoffDate)).
			Update("active_until", cutoffDate).Error
		if err != nil {
			return fmt.Errorf("terminate series: %w", err)
		}
		return nil
	})
}

// DeleteSeries удаляет все слоты серии.
func (s *SeriesService) DeleteSeries(ctx context.Context, ref recur.EventRef) error {
	series, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	ids := memberIDs(series)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.RecurringSlot{}, "id IN ?", ids)
		if res.Error != nil {
			return fmt.Errorf("delete series slots: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return recur.ErrConcurrentModification
		}
		return nil
	})
}

// ChangeWeekdays меняет набор дней недели серии. Строки сохранённых дней
// не трогаются вовсе (идентичность строк важна для параллельных читателей);
// убранные дни удаляются, добавленные копируются с существующего слота.
func (s *SeriesService) ChangeWeekdays(ctx context.Context, ref recur.EventRef, newDays []time.Weekday) error {
	days, err := normalizeWeekdays(newDays)
	if err != nil {
		return err
	}

	series, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	wanted := make(map[time.Weekday]struct{}, len(days))
	for _, d := range days {
		wanted[d] = struct{}{}
	}
	existing := make(map[time.Weekday]struct{}, len(series.Slots))
	for _, m := range series.Slots {
		existing[m.DayOfWeek] = struct{}{}
	}

	var deleteIDs []string
	for _, m := range series.Slots {
		if _, keep := wanted[m.DayOfWeek]; !keep {
			deleteIDs = append(deleteIDs, m.ID)
		}
	}
	sort.Strings(deleteIDs)

	// Шаблон для новых дней — первый слот серии (атрибуты у всех общие).
	template, err := s.slotRepo.GetByID(ctx, series.Slots[0].ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return recur.ErrConcurrentModification
		}
		return fmt.Errorf("load template slot: %w", err)
	}

	var inserts []model.RecurringSlot
	for _, d := range days {
		if _, has := existing[d]; has {
			continue
		}
		row := model.RecurringSlot{
			ID:            uuid.New(),
			CalendarID:    template.CalendarID,
			DayOfWeek:     int(d),
			StartMinute:   template.StartMinute,
			EndMinute:     template.EndMinute,
			ActiveFrom:    template.ActiveFrom,
			ActiveUntil:   copyDate(template.ActiveUntil),
			Title:         template.Title,
			ReferenceDate: template.ReferenceDate,
			Participants:  template.Participants,
			Color:         template.Color,
		}
		inserts = append(inserts, row)
	}

	if len(deleteIDs) == 0 && len(inserts) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deleteIDs) > 0 {
			res := tx.Delete(&model.RecurringSlot{}, "id IN ?", deleteIDs)
			if res.Error != nil {
				return fmt.Errorf("delete removed weekdays: %w", res.Error)
			}
			if res.RowsAffected != int64(len(deleteIDs)) {
				return recur.ErrConcurrentModification
			}
		}
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return fmt.Errorf("insert added weekdays: %w", err)
			}
		}
		return nil
	})
}

// memberIDs возвращает ID слотов серии в фиксированном порядке,
// чтобы записи применялись детерминированно.
func memberIDs(series recur.Series) []string {
	ids := make([]string, 0, len(series.Slots))
	for _, m := range series.Slots {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids
}

func normalizeWeekdays(days []time.Weekday) ([]time.Weekday, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("weekday set must not be empty")
	}
	seen := make(map[time.Weekday]struct{}, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return nil, fmt.Errorf("invalid day of week: %d", d)
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func copyDate(d *datatypes.Date) *datatypes.Date {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
