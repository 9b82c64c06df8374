package handler

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
)

var reHHMM = regexp.MustCompile(`^\d{2}:\d{2}$`)

// parseMinuteOfDay переводит "HH:MM" в минуту суток.
func parseMinuteOfDay(s string) (int, error) {
	if !reHHMM.MatchString(s) {
		return 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	parts := strings.SplitN(s, ":", 2)
	hh, _ := strconv.Atoi(parts[0])
	mm, _ := strconv.Atoi(parts[1])
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return hh*60 + mm, nil
}

// httpError переводит доменные ошибки в стабильные коды API.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, recur.ErrMalformedIdentifier):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "MALFORMED_IDENTIFIER"})
	case errors.Is(err, recur.ErrInvalidTimeRange):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_TIME_RANGE"})
	case errors.Is(err, recur.ErrSeriesNotFound):
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "SERIES_NOT_FOUND"})
	case errors.Is(err, recur.ErrConcurrentModification), errors.Is(err, recur.ErrPartialWrite):
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "CONCURRENT_MODIFICATION"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "INTERNAL"})
	}
}

func validationError(fields map[string]string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": fields})
}
