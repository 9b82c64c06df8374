package recur

import "errors"

var (
	// ErrMalformedIdentifier — токен не был создан нашим кодировщиком.
	ErrMalformedIdentifier = errors.New("malformed occurrence identifier")
	// ErrInvalidTimeRange — минуты вне [0,1440) или конец окна раньше начала.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrSeriesNotFound — ключ серии не нашёл ни одного слота.
	ErrSeriesNotFound = errors.New("series not found")
	// ErrConcurrentModification — состав серии изменился между чтением и записью.
	ErrConcurrentModification = errors.New("series concurrently modified")
	// ErrPartialWrite — массовое обновление не применилось целиком.
	ErrPartialWrite = errors.New("partial write failure")
)
