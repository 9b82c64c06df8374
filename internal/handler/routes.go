package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes подключает все маршруты API.
func RegisterRoutes(e *echo.Echo, calendars *CalendarHandler, events *EventHandler) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	api.GET("/calendars", calendars.ListCalendars)
	api.POST("/calendars", calendars.CreateCalendar)
	api.GET("/calendars/:calendarId/agenda", calendars.Agenda)
	api.POST("/calendars/:calendarId/series", calendars.CreateSeries)
	api.POST("/calendars/:calendarId/events", events.CreateEvent)

	// Единая точка для обоих видов ссылок: UUID — хранимое событие,
	// иначе — виртуальный токен вхождения серии.
	api.GET("/events/:ref", events.GetEvent)
	api.PATCH("/events/:ref", events.UpdateEvent)
	api.DELETE("/events/:ref", events.DeleteEvent)
	api.POST("/events/:ref/terminate", events.TerminateSeries)
	api.PUT("/events/:ref/weekdays", events.ChangeWeekdays)
}
