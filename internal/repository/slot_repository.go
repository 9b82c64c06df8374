package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
)

type SlotRepository interface {
	// Все слоты календаря.
	ListByCalendar(ctx context.Context, calendarID string) ([]model.RecurringSlot, error)
	// Найти слот по ID.
	GetByID(ctx context.Context, id string) (*model.RecurringSlot, error)
	// Вставить пачку слотов (создание серии — по строке на день недели).
	BulkInsert(ctx context.Context, slots []model.RecurringSlot) error
	// Удалить слоты по списку ID.
	BulkDelete(ctx context.Context, ids []string) error
}

type GormSlotRepository struct {
	db *gorm.DB
}

func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

func (r *GormSlotRepository) ListByCalendar(ctx context.Context, calendarID string) ([]model.RecurringSlot, error) {
	var slots []model.RecurringSlot
	err := r.db.WithContext(ctx).
		Where("calendar_id = ?", calendarID).
		Order("title ASC, start_minute ASC, day_of_week ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormSlotRepository) GetByID(ctx context.Context, id string) (*model.RecurringSlot, error) {
	var slot model.RecurringSlot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *GormSlotRepository) BulkInsert(ctx context.Context, slots []model.RecurringSlot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&slots).Error
}

func (r *GormSlotRepository) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&model.RecurringSlot{}, "id IN ?", ids).Error
}
