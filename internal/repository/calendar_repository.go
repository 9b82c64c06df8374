package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
)

type CalendarRepository interface {
	List(ctx context.Context) ([]model.Calendar, error)
	GetByID(ctx context.Context, id string) (*model.Calendar, error)
	Create(ctx context.Context, cal *model.Calendar) error
}

type GormCalendarRepository struct {
	db *gorm.DB
}

func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

func (r *GormCalendarRepository) List(ctx context.Context) ([]model.Calendar, error) {
	var calendars []model.Calendar
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&calendars).Error; err != nil {
		return nil, err
	}
	return calendars, nil
}

func (r *GormCalendarRepository) GetByID(ctx context.Context, id string) (*model.Calendar, error) {
	var cal model.Calendar
	if err := r.db.WithContext(ctx).First(&cal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cal, nil
}

func (r *GormCalendarRepository) Create(ctx context.Context, cal *model.Calendar) error {
	return r.db.WithContext(ctx).Create(cal).Error
}
