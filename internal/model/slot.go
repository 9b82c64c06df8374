package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
)

// recurring_slots — по одной строке на каждый выбранный день недели
// повторяющегося события. Строки одной серии разделяют название, время,
// цвет и участников; серия как таковая не хранится и выводится заново
// при каждом чтении (см. internal/recur).
type RecurringSlot struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CalendarID string `gorm:"type:varchar(64);not null;index"`

	DayOfWeek   int `gorm:"not null"` // 0 = воскресенье
	StartMinute int `gorm:"not null"` // минута суток [0,1440)
	EndMinute   int `gorm:"not null"` // меньше StartMinute = переход через полночь

	ActiveFrom  datatypes.Date  `gorm:"type:date;not null"`
	ActiveUntil *datatypes.Date `gorm:"type:date"` // включительно; nil = бессрочно

	Title string `gorm:"type:varchar(200);not null"`

	// Информационная дата первого проведения, на логику не влияет.
	ReferenceDate datatypes.Date `gorm:"type:date"`

	// Упорядоченный список имён участников, JSON-массив строк.
	Participants datatypes.JSON `gorm:"type:jsonb"`

	Color string `gorm:"type:varchar(20)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (RecurringSlot) TableName() string { return "recurring_slots" }

// ParticipantNames разбирает JSON-колонку в список имён.
// Повреждённое содержимое трактуется как пустой список.
func (s *RecurringSlot) ParticipantNames() []string {
	if len(s.Participants) == 0 {
		return nil
	}
	var names []string
	if err := json.Unmarshal(s.Participants, &names); err != nil {
		return nil
	}
	return names
}

// SetParticipants сериализует список имён в JSON-колонку.
func (s *RecurringSlot) SetParticipants(names []string) {
	if len(names) == 0 {
		s.Participants = nil
		return
	}
	raw, _ := json.Marshal(names)
	s.Participants = datatypes.JSON(raw)
}

// EngineSlot переводит хранимую строку в представление движка повторений.
func (s *RecurringSlot) EngineSlot() recur.Slot {
	es := recur.Slot{
		ID:           s.ID.String(),
		CalendarID:   s.CalendarID,
		DayOfWeek:    time.Weekday(s.DayOfWeek),
		StartMinute:  s.StartMinute,
		EndMinute:    s.EndMinute,
		ActiveFrom:   recur.FromDate(s.ActiveFrom),
		Title:        s.Title,
		Participants: s.ParticipantNames(),
		Color:        s.Color,
	}
	if s.ActiveUntil != nil {
		until := recur.FromDate(*s.ActiveUntil)
		es.ActiveUntil = &until
	}
	return es
}

// EngineSlots переводит срез строк целиком.
func EngineSlots(rows []RecurringSlot) []recur.Slot {
	out := make([]recur.Slot, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EngineSlot())
	}
	return out
}
