package model

import (
	"time"

	"github.com/google/uuid"
)

// events — обычные разовые события. Хранилище отдельное от слотов
// повторений: читающая сторона сливает оба источника в одну ленту.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CalendarID string `gorm:"type:varchar(64);not null;index"`

	Title       string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`

	StartAt time.Time `gorm:"type:timestamp with time zone;not null;index"`
	EndAt   time.Time `gorm:"type:timestamp with time zone;not null"`

	Color *string `gorm:"type:varchar(20)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Event) TableName() string { return "events" }
