package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	pagination "github.com/sgyeong97/gbti-calendar-sub000/internal/calendar"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/repository"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/service"
)

type CalendarHandler struct {
	calendarRepo repository.CalendarRepository
	calendarSvc  *service.CalendarService
	seriesSvc    *service.SeriesService

	agendaPageSize int
}

func NewCalendarHandler(
	calendarRepo repository.CalendarRepository,
	calendarSvc *service.CalendarService,
	seriesSvc *service.SeriesService,
	agendaPageSize int,
) *CalendarHandler {
	if agendaPageSize <= 0 {
		agendaPageSize = 50
	}
	return &CalendarHandler{
		calendarRepo:   calendarRepo,
		calendarSvc:    calendarSvc,
		seriesSvc:      seriesSvc,
		agendaPageSize: agendaPageSize,
	}
}

// GET /api/calendars
func (h *CalendarHandler) ListCalendars(c echo.Context) error {
	calendars, err := h.calendarRepo.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, calendars)
}

type createCalendarInput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ThemeColor string `json:"theme_color"`
}

// POST /api/calendars
func (h *CalendarHandler) CreateCalendar(c echo.Context) error {
	var in createCalendarInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}

	fields := map[string]string{}
	if strings.TrimSpace(in.ID) == "" {
		fields["id"] = "calendar id is required"
	}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	cal := model.Calendar{ID: in.ID, Title: in.Title, ThemeColor: in.ThemeColor}
	if err := h.calendarRepo.Create(c.Request().Context(), &cal); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cal)
}

// GET /api/calendars/:calendarId/agenda?from=YYYY-MM-DD&to=YYYY-MM-DD&page=&page_size=
//
// Лента за окно дат: вхождения повторяющихся серий плюс разовые события.
// Перевёрнутое окно отклоняется до обращения к базе.
func (h *CalendarHandler) Agenda(c echo.Context) error {
	calendarID := c.Param("calendarId")

	fields := map[string]string{}
	from, err := recur.ParseCivilDate(c.QueryParam("from"))
	if err != nil {
		fields["from"] = "must be YYYY-MM-DD"
	}
	to, err := recur.ParseCivilDate(c.QueryParam("to"))
	if err != nil {
		fields["to"] = "must be YYYY-MM-DD"
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	items, err := h.calendarSvc.Agenda(c.Request().Context(), calendarID, from, to)
	if err != nil {
		return httpError(err)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if pageSize <= 0 {
		pageSize = h.agendaPageSize
	}
	p := pagination.Paginate(items, page, pageSize)

	return c.JSON(http.StatusOK, map[string]any{
		"items":     p.Items,
		"page":      p.Page,
		"page_size": p.PageSize,
		"total":     p.Total,
		"has_next":  p.HasNext,
		"has_prev":  p.HasPrev,
	})
}

type createSeriesInput struct {
	Title        string   `json:"title"`
	Weekdays     []int    `json:"weekdays"` // 0 = воскресенье
	StartTime    string   `json:"start_time"` // HH:MM
	EndTime      string   `json:"end_time"`   // HH:MM; меньше start_time = через полночь
	ActiveFrom   string   `json:"active_from"` // YYYY-MM-DD
	Participants []string `json:"participants"`
	Color        string   `json:"color"`
}

// POST /api/calendars/:calendarId/series
func (h *CalendarHandler) CreateSeries(c echo.Context) error {
	calendarID := c.Param("calendarId")

	var in createSeriesInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}

	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	if len(in.Weekdays) == 0 {
		fields["weekdays"] = "at least one weekday"
	}
	startMinute, err := parseMinuteOfDay(in.StartTime)
	if err != nil {
		fields["start_time"] = "time must be HH:MM"
	}
	endMinute, err := parseMinuteOfDay(in.EndTime)
	if err != nil {
		fields["end_time"] = "time must be HH:MM"
	}
	activeFrom, err := recur.ParseCivilDate(in.ActiveFrom)
	if err != nil {
		fields["active_from"] = "must be YYYY-MM-DD"
	}
	days := make([]time.Weekday, 0, len(in.Weekdays))
	for _, d := range in.Weekdays {
		if d < 0 || d > 6 {
			fields["weekdays"] = "weekday must be in 0..6"
			break
		}
		days = append(days, time.Weekday(d))
	}
	if len(fields) > 0 {
		return validationError(fields)
	}

	rows, err := h.seriesSvc.CreateSeries(c.Request().Context(), service.CreateSeriesInput{
		CalendarID:   calendarID,
		Title:        in.Title,
		Weekdays:     days,
		StartMinute:  startMinute,
		EndMinute:    endMinute,
		ActiveFrom:   activeFrom,
		Participants: in.Participants,
		Color:        in.Color,
	})
	if err != nil {
		return httpError(err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID.String())
	}
	return c.JSON(http.StatusCreated, map[string]any{"slot_ids": ids})
}
