package model

import "time"

// calendars — календарь сообщества. Идентификатор строковый и задаётся
// при создании (slug сообщества), а не генерируется.
type Calendar struct {
	ID string `gorm:"type:varchar(64);primaryKey"`

	Title string `gorm:"type:varchar(200);not null"`

	// Цвет по умолчанию для новых серий; чистая конфигурация,
	// никакого глобального «текущего цвета» в логике нет.
	ThemeColor string `gorm:"type:varchar(20)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Calendar) TableName() string { return "calendars" }
