package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SLN-BookingService/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Booking       BookingConfig       `toml:"booking"`
	NotifyService NotifyServiceConfig `toml:"notify_service"`
	Jobs          JobsConfig          `toml:"jobs"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// BookingConfig бизнес-настройки расписания салона
type BookingConfig struct {
	SlotStepMinutes    int    `toml:"slot_step_minutes"`
	LeadTimeMinutes    int    `toml:"lead_time_minutes"`
	MoveGuardStartHour int    `toml:"move_guard_start_hour"`
	MoveGuardEndHour   int    `toml:"move_guard_end_hour"`
	Timezone           string `toml:"timezone"`
}

// Location парсит таймзону салона; пустая строка - локальная зона сервера
func (b BookingConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(b.Timezone)
}

// NotifyServiceConfig настройки клиента сервиса уведомлений
type NotifyServiceConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// JobsConfig настройки фоновых задач
type JobsConfig struct {
	Enabled                 bool   `toml:"enabled"`
	CompleteElapsedSchedule string `toml:"complete_elapsed_schedule"` // cron выражение
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Booking.SlotStepMinutes == 0 {
		cfg.Booking.SlotStepMinutes = domain.DefaultSlotStepMinutes
	}
	if cfg.Booking.LeadTimeMinutes == 0 {
		cfg.Booking.LeadTimeMinutes = domain.DefaultLeadTimeMinutes
	}
	if cfg.Booking.MoveGuardStartHour == 0 && cfg.Booking.MoveGuardEndHour == 0 {
		cfg.Booking.MoveGuardStartHour = domain.DefaultMoveGuardStartHour
		cfg.Booking.MoveGuardEndHour = domain.DefaultMoveGuardEndHour
	}
	if cfg.Jobs.CompleteElapsedSchedule == "" {
		cfg.Jobs.CompleteElapsedSchedule = "*/10 * * * *"
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if cfg.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if cfg.Booking.MoveGuardStartHour < 0 || cfg.Booking.MoveGuardEndHour > 24 ||
		cfg.Booking.MoveGuardStartHour >= cfg.Booking.MoveGuardEndHour {
		return fmt.Errorf("config: invalid booking move guard hours %d-%d",
			cfg.Booking.MoveGuardStartHour, cfg.Booking.MoveGuardEndHour)
	}
	if _, err := cfg.Booking.Location(); err != nil {
		return fmt.Errorf("config: invalid booking.timezone: %w", err)
	}
	return nil
}
