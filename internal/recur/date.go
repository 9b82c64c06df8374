package recur

import (
	"time"

	"gorm.io/datatypes"
)

// CivilDate — календарная дата без часового пояса (год/месяц/день).
// Вся арифметика окна повторений работает только с такими датами;
// перевод в конкретный момент времени делается один раз на границе
// системы через At.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

const civilDateLayout = "2006-01-02"

// NewCivilDate нормализует компоненты (31 апреля -> 1 мая и т.п.).
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseCivilDate разбирает дату в формате YYYY-MM-DD.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse(civilDateLayout, s)
	if err != nil {
		return CivilDate{}, err
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// CivilDateOf отбрасывает время и часовой пояс момента t.
func CivilDateOf(t time.Time) CivilDate {
	year, month, day := t.Date()
	return CivilDate{Year: year, Month: month, Day: day}
}

// FromDate конвертирует хранимую datatypes.Date в CivilDate.
func FromDate(d datatypes.Date) CivilDate {
	return CivilDateOf(time.Time(d))
}

// Date конвертирует CivilDate в хранимый тип колонки date.
func (d CivilDate) Date() datatypes.Date {
	return datatypes.Date(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
}

func (d CivilDate) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(civilDateLayout)
}

// Weekday возвращает день недели (0 = воскресенье, как в time.Weekday).
func (d CivilDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// AddDays сдвигает дату на n дней (n может быть отрицательным).
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CivilDate) After(other CivilDate) bool {
	return other.Before(d)
}

func (d CivilDate) Equal(other CivilDate) bool {
	return d == other
}

func (d CivilDate) IsZero() bool {
	return d == CivilDate{}
}

// At материализует дату в момент времени: minuteOfDay минут от полуночи
// в часовом поясе loc. Это единственная точка, где календарная дата
// превращается в instant.
func (d CivilDate) At(minuteOfDay int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, minuteOfDay, 0, 0, loc)
}
