package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
)

type EventRepository interface {
	// Разовые события календаря, пересекающиеся с окном [from, to).
	ListByCalendarRange(ctx context.Context, calendarID string, from, to time.Time) ([]model.Event, error)
	// Создать событие.
	Create(ctx context.Context, event *model.Event) error
	// Найти событие по ID.
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// Обновить событие.
	Update(ctx context.Context, event *model.Event) error
	// Удалить событие.
	Delete(ctx context.Context, id string) error
}

// Реализация на GORM.
type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) ListByCalendarRange(
	ctx context.Context,
	calendarID string,
	from, to time.Time,
) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("calendar_id = ?", calendarID).
		Where("start_at < ? AND end_at > ?", to, from).
		Order("start_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormEventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormEventRepository) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *GormEventRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Event{}, "id = ?", id).Error
}
