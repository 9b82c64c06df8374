package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/repository"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/service"
)

// EventHandler обслуживает оба вида ссылок на события единым путём.
//
// Граничное правило распознавания: строка :ref, разбираемая как UUID,
// адресует хранимое событие; любая другая обязана быть виртуальным
// токеном вхождения и уходит в движок серий. Никаких префиксов и
// разборов по разделителям — только recur.ParseEventRef.
type EventHandler struct {
	eventRepo repository.EventRepository
	seriesSvc *service.SeriesService
}

func NewEventHandler(eventRepo repository.EventRepository, seriesSvc *service.SeriesService) *EventHandler {
	return &EventHandler{eventRepo: eventRepo, seriesSvc: seriesSvc}
}

type createEventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartAt     string `json:"start_at"` // RFC3339
	EndAt       string `json:"end_at"`   // RFC3339
	Color       string `json:"color"`
}

// POST /api/calendars/:calendarId/events
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var in createEventInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}

	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	startAt, err := time.Parse(time.RFC3339, in.StartAt)
	if err != nil {
		fields["start_at"] = "must be RFC3339"
	}
	endAt, err := time.Parse(time.RFC3339, in.EndAt)
	if err != nil {
		fields["end_at"] = "must be RFC3339"
	}
	if len(fields) == 0 && !endAt.After(startAt) {
		fields["end_at"] = "must be after start_at"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	event := model.Event{
		CalendarID:  c.Param("calendarId"),
		Title:       in.Title,
		Description: in.Description,
		StartAt:     startAt,
		EndAt:       endAt,
	}
	if in.Color != "" {
		event.Color = &in.Color
	}

	if err := h.eventRepo.Create(c.Request().Context(), &event); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, event)
}

// GET /api/events/:ref
func (h *EventHandler) GetEvent(c echo.Context) error {
	ref, err := recur.ParseEventRef(c.Param("ref"))
	if err != nil {
		return httpError(err)
	}

	switch ref.Kind {
	case recur.RefPersisted:
		event, err := h.eventRepo.GetByID(c.Request().Context(), ref.EventID.String())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, event)
	default:
		series, err := h.seriesSvc.Resolve(c.Request().Context(), ref)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"series_title":    series.Key.Title,
			"series_weekdays": series.Weekdays,
			"date":            ref.Day.String(),
		})
	}
}

type patchEventInput struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	StartTime    *string   `json:"start_time"` // HH:MM, только для серий
	EndTime      *string   `json:"end_time"`
	StartAt      *string   `json:"start_at"` // RFC3339, только для разовых событий
	EndAt        *string   `json:"end_at"`
	Participants *[]string `json:"participants"`
	Color        *string   `json:"color"`
}

// PATCH /api/events/:ref
//
// Виртуальная ссылка меняет всю серию (каждый день недели разом);
// хранимая — одну строку события.
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	ref, err := recur.ParseEventRef(c.Param("ref"))
	if err != nil {
		return httpError(err)
	}

	var in patchEventInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}

	if ref.Kind == recur.RefVirtual {
		return h.updateSeries(c, ref, in)
	}
	return h.updatePersisted(c, ref, in)
}

func (h *EventHandler) updateSeries(c echo.Context, ref recur.EventRef, in patchEventInput) error {
	patch := service.SeriesPatch{
		Title:        in.Title,
		Participants: in.Participants,
		Color:        in.Color,
	}
	if in.StartTime != nil {
		minute, err := parseMinuteOfDay(*in.StartTime)
		if err != nil {
			return validationError(map[string]string{"start_time": "time must be HH:MM"})
		}
		patch.StartMinute = &minute
	}
	if in.EndTime != nil {
		minute, err := parseMinuteOfDay(*in.EndTime)
		if err != nil {
			return validationError(map[string]string{"end_time": "time must be HH:MM"})
		}
		patch.EndMinute = &minute
	}

	if err := h.seriesSvc.UpdateSeries(c.Request().Context(), ref, patch); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) updatePersisted(c echo.Context, ref recur.EventRef, in patchEventInput) error {
	event, err := h.eventRepo.GetByID(c.Request().Context(), ref.EventID.String())
	if err != nil {
		return httpError(err)
	}

	if in.Title != nil {
		event.Title = *in.Title
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.StartAt != nil {
		startAt, err := time.Parse(time.RFC3339, *in.StartAt)
		if err != nil {
			return validationError(map[string]string{"start_at": "must be RFC3339"})
		}
		event.StartAt = startAt
	}
	if in.EndAt != nil {
		endAt, err := time.Parse(time.RFC3339, *in.EndAt)
		if err != nil {
			return validationError(map[string]string{"end_at": "must be RFC3339"})
		}
		event.EndAt = endAt
	}
	if in.Color != nil {
		if *in.Color == "" {
			event.Color = nil
		} else {
			event.Color = in.Color
		}
	}

	if err := h.eventRepo.Update(c.Request().Context(), event); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, event)
}

// DELETE /api/events/:ref
//
// Для виртуальной ссылки удаляется вся серия (все её слоты).
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	ref, err := recur.ParseEventRef(c.Param("ref"))
	if err != nil {
		return httpError(err)
	}

	if ref.Kind == recur.RefVirtual {
		if err := h.seriesSvc.DeleteSeries(c.Request().Context(), ref); err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	if _, err := h.eventRepo.GetByID(c.Request().Context(), ref.EventID.String()); err != nil {
		return httpError(err)
	}
	if err := h.eventRepo.Delete(c.Request().Context(), ref.EventID.String()); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type terminateInput struct {
	CutoffDate string `json:"cutoff_date"` // YYYY-MM-DD, включительно
}

// POST /api/events/:ref/terminate
//
// Закрывает серию с даты: строки остаются, история видна в прошлых окнах.
func (h *EventHandler) TerminateSeries(c echo.Context) error {
	ref, err := recur.ParseEventRef(c.Param("ref"))
	if err != nil {
		return httpError(err)
	}
	if ref.Kind != recur.RefVirtual {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "NOT_RECURRING"})
	}

	var in terminateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	cutoff, err := recur.ParseCivilDate(in.CutoffDate)
	if err != nil {
		return validationError(map[string]string{"cutoff_date": "must be YYYY-MM-DD"})
	}

	if err := h.seriesSvc.Terminate(c.Request().Context(), ref, cutoff); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type weekdaysInput struct {
	Weekdays []int `json:"weekdays"` // 0 = воскресенье
}

// PUT /api/events/:ref/weekdays
func (h *EventHandler) ChangeWeekdays(c echo.Context) error {
	ref, err := recur.ParseEventRef(c.Param("ref"))
	if err != nil {
		return httpError(err)
	}
	if ref.Kind != recur.RefVirtual {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "NOT_RECURRING"})
	}

	var in weekdaysInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if len(in.Weekdays) == 0 {
		return validationError(map[string]string{"weekdays": "at least one weekday"})
	}
	days := make([]time.Weekday, 0, len(in.Weekdays))
	for _, d := range in.Weekdays {
		if d < 0 || d > 6 {
			return validationError(map[string]string{"weekdays": "weekday must be in 0..6"})
		}
		days = append(days, time.Weekday(d))
	}

	if err := h.seriesSvc.ChangeWeekdays(c.Request().Context(), ref, days); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
