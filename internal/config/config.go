package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config — вся конфигурация сервиса из окружения.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// БД
	DBHost            string `envconfig:"DB_HOST" default:"postgres"`
	DBPort            int    `envconfig:"DB_PORT" default:"5432"`
	DBUser            string `envconfig:"DB_USER" default:"carwash"`
	DBPassword        string `envconfig:"DB_PASSWORD" default:"carwash"`
	DBName            string `envconfig:"DB_NAME" default:"carwash_db"`
	DBSSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	DBTimeZone        string `envconfig:"DB_TIMEZONE" default:"Europe/Moscow"`
	DBMaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifeMin  int    `envconfig:"DB_CONN_MAX_LIFETIME_MIN" default:"30"`

	// Redis для эфемерного состояния диалога.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	SessionTTLMin int    `envconfig:"SESSION_TTL_MIN" default:"30"`

	// RabbitMQ (опционально; пустой URL — события не публикуются).
	AMQPURL      string `envconfig:"AMQP_URL" default:""`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"carwash.events"`

	// Окно записи по умолчанию; мойка может переопределить график.
	BookingOpenHour  int `envconfig:"BOOKING_OPEN_HOUR" default:"9"`
	BookingCloseHour int `envconfig:"BOOKING_CLOSE_HOUR" default:"21"`
	SlotStepMin      int `envconfig:"BOOKING_SLOT_STEP_MIN" default:"60"`
	MaxSlots         int `envconfig:"BOOKING_MAX_SLOTS" default:"10"`

	// Часовой пояс мойки для вычисления "сегодня".
	LocalTimeZone string `envconfig:"LOCAL_TIMEZONE" default:"Europe/Moscow"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	// минимальная валидация
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}
	if cfg.BookingOpenHour < 0 || cfg.BookingCloseHour > 24 || cfg.BookingOpenHour >= cfg.BookingCloseHour {
		return nil, fmt.Errorf("invalid booking window: %d-%d", cfg.BookingOpenHour, cfg.BookingCloseHour)
	}
	if cfg.SlotStepMin <= 0 {
		return nil, fmt.Errorf("invalid slot step: %d", cfg.SlotStepMin)
	}

	return &cfg, nil
}

// DSN собирает строку подключения к Postgres.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}

// Location возвращает локальный часовой пояс мойки (UTC при ошибке разбора).
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LocalTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SessionTTL — время жизни черновика диалога.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}
