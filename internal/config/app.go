package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — настройки приложения из YAML-файла. База конфигурируется
// отдельно через окружение (см. db.go).
type AppConfig struct {
	// Listen — адрес HTTP-сервера.
	Listen string `yaml:"listen"`

	// Timezone — IANA-пояс отображения (например, "Asia/Seoul").
	// Внутри движка повторений поясов нет: пояс применяется один раз,
	// при материализации вхождений на границе системы.
	Timezone string `yaml:"timezone"`

	// WeekStart — с какого дня недели рисуются сетки: "monday" или "sunday".
	// Чистая настройка отображения, на разворачивание правил не влияет.
	WeekStart string `yaml:"week_start"`

	// AgendaPageSize — размер страницы ленты по умолчанию.
	AgendaPageSize int `yaml:"agenda_page_size"`

	// DedupeIdenticalSlots схлопывает полностью совпадающие слоты при
	// разворачивании. Исторически выключено: два одинаковых слота — два
	// отдельных вхождения.
	DedupeIdenticalSlots bool `yaml:"dedupe_identical_slots"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Listen:         "127.0.0.1:8080",
		Timezone:       "Asia/Seoul",
		WeekStart:      "sunday",
		AgendaPageSize: 50,
	}
}

// LoadAppConfig читает конфиг из path. Отсутствующий файл создаётся
// с дефолтами при первом запуске.
func LoadAppConfig(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultAppConfig()
		if saveErr := saveAppConfig(path, cfg); saveErr != nil {
			return nil, fmt.Errorf("write default config: %w", saveErr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultAppConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location резолвит настроенный пояс отображения.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *AppConfig) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen must not be empty")
	}
	if c.WeekStart != "" && c.WeekStart != "monday" && c.WeekStart != "sunday" {
		return fmt.Errorf("config: week_start must be monday or sunday, got %q", c.WeekStart)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: bad timezone %q: %w", c.Timezone, err)
	}
	return nil
}

func saveAppConfig(path string, cfg *AppConfig) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}
