package recur

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/google/uuid"
)

// Виртуальный идентификатор адресует одно вхождение (серия + календарный
// день), у которого нет собственной строки в хранилище. Формат: маленькая
// JSON-запись, закодированная base64url без паддинга. Никаких разделителей
// в самом токене нет, поэтому CalendarID и SlotID могут содержать любые
// символы — дефисы, двоеточия, что угодно.
type occurrenceToken struct {
	CalendarID string `json:"c"`
	Date       string `json:"d"` // YYYY-MM-DD
	SlotID     string `json:"s"`
}

// EncodeOccurrenceID собирает виртуальный идентификатор вхождения.
func EncodeOccurrenceID(calendarID string, day CivilDate, slotID string) string {
	payload, _ := json.Marshal(occurrenceToken{
		CalendarID: calendarID,
		Date:       day.String(),
		SlotID:     slotID,
	})
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeOccurrenceID разбирает токен обратно в (календарь, день, слот).
// Любой вход, не созданный EncodeOccurrenceID, даёт ErrMalformedIdentifier:
// частичный разбор запрещён.
func DecodeOccurrenceID(token string) (calendarID string, day CivilDate, slotID string, err error) {
	raw, decErr := base64.RawURLEncoding.DecodeString(token)
	if decErr != nil {
		return "", CivilDate{}, "", ErrMalformedIdentifier
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var t occurrenceToken
	if decErr := dec.Decode(&t); decErr != nil {
		return "", CivilDate{}, "", ErrMalformedIdentifier
	}
	// Мусор после записи — тоже не наш токен.
	if _, trailErr := dec.Token(); trailErr != io.EOF {
		return "", CivilDate{}, "", ErrMalformedIdentifier
	}
	if t.CalendarID == "" || t.SlotID == "" {
		return "", CivilDate{}, "", ErrMalformedIdentifier
	}

	d, parseErr := ParseCivilDate(t.Date)
	if parseErr != nil {
		return "", CivilDate{}, "", ErrMalformedIdentifier
	}

	return t.CalendarID, d, t.SlotID, nil
}

// RefKind различает настоящие (хранимые) и виртуальные события.
type RefKind int

const (
	RefPersisted RefKind = iota
	RefVirtual
)

// EventRef — размеченный вариант вместо строковых префиксов: либо хранимое
// событие по UUID, либо вычисленное вхождение серии. Все мутации на границе
// API диспетчеризуются по Kind.
type EventRef struct {
	Kind RefKind

	// Для RefPersisted.
	EventID uuid.UUID

	// Для RefVirtual.
	CalendarID string
	Day        CivilDate
	SlotID     string
}

// ParseEventRef реализует граничное правило распознавания идентификаторов:
// строка, разбираемая как UUID, адресует хранимое событие; иначе она обязана
// быть корректным виртуальным токеном. Всё остальное — ErrMalformedIdentifier.
func ParseEventRef(raw string) (EventRef, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return EventRef{Kind: RefPersisted, EventID: id}, nil
	}

	calendarID, day, slotID, err := DecodeOccurrenceID(raw)
	if err != nil {
		return EventRef{}, err
	}
	return EventRef{
		Kind:       RefVirtual,
		CalendarID: calendarID,
		Day:        day,
		SlotID:     slotID,
	}, nil
}
