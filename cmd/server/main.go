package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/config"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/db"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/handler"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/model"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/repository"
	"github.com/sgyeong97/gbti-calendar-sub000/internal/service"
)

func main() {
	// 1. Конфиг приложения из YAML (создаётся при первом запуске).
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	appCfg, err := config.LoadAppConfig(cfgPath)
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	loc, err := appCfg.Location()
	if err != nil {
		log.Fatalf("resolve timezone: %v", err)
	}

	// 2. Конфиг БД из env и подключение через GORM.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	slotRepo := repository.NewGormSlotRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)
	calendarRepo := repository.NewGormCalendarRepository(gormDB)

	// 5. Сервисы: лента календаря и мутатор серий.
	calendarSvc := service.NewCalendarService(slotRepo, eventRepo, loc, appCfg.DedupeIdenticalSlots)
	seriesSvc := service.NewSeriesService(gormDB, slotRepo)

	// 6. HTTP-сервер.
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler.RegisterRoutes(
		e,
		handler.NewCalendarHandler(calendarRepo, calendarSvc, seriesSvc, appCfg.AgendaPageSize),
		handler.NewEventHandler(eventRepo, seriesSvc),
	)

	// 7. Запускаем сервер в горутине.
	go func() {
		if err := e.Start(appCfg.Listen); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()
	log.Printf("calendar server listening on %s (display timezone %s)", appCfg.Listen, loc)

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down http server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
