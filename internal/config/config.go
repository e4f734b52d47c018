// Package config загружает конфигурацию сервиса из TOML-файла с переопределением через окружение
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config корневая конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Directory  DirectoryConfig  `toml:"directory"`
	Scheduling SchedulingConfig `toml:"scheduling"`
	Checkout   CheckoutConfig   `toml:"checkout"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Outbox     OutboxConfig     `toml:"outbox"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки PostgreSQL
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
	TxMaxAttempts   int    `toml:"tx_max_attempts"`
	TxRetryDelayMs  int    `toml:"tx_retry_delay_ms"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL строка подключения в формате postgres:// для golang-migrate
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// DirectoryConfig настройки клиента справочника бизнесов и услуг
type DirectoryConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// SchedulingConfig параметры расчета слотов
type SchedulingConfig struct {
	SlotStepMinutes    int `toml:"slot_step_minutes"`
	MinNoticeMinutes   int `toml:"min_notice_minutes"`
	AdvanceBookingDays int `toml:"advance_booking_days"` // 0 = без ограничения
	PendingHoldMinutes int `toml:"pending_hold_minutes"` // 0 = pending-записи не истекают
}

// CheckoutConfig параметры комиссии платформы (единственный источник значений комиссии)
type CheckoutConfig struct {
	FeeRateBps         int64 `toml:"fee_rate_bps"`
	FixedFeeCents      int64 `toml:"fixed_fee_cents"`
	GracePeriodMinutes int   `toml:"grace_period_minutes"`
}

// KafkaConfig настройки брокера для relay outbox-событий
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// OutboxConfig настройки фонового relay
type OutboxConfig struct {
	PollIntervalMs int `toml:"poll_interval_ms"`
	BatchSize      int `toml:"batch_size"`
}

// RateLimitConfig ограничение частоты создания записей (Redis, fixed window)
type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	Limit         int    `toml:"limit"`
	WindowSeconds int    `toml:"window_seconds"`
	FailOpen      bool   `toml:"fail_open"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "scheduling",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxMaxAttempts:   txmanager.DefaultMaxAttempts,
			TxRetryDelayMs:  int(txmanager.DefaultInitialInterval.Milliseconds()),
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "smc-scheduling-service",
		},
		Directory: DirectoryConfig{Timeout: 5},
		Scheduling: SchedulingConfig{
			SlotStepMinutes:    domain.DefaultSlotStepMinutes,
			MinNoticeMinutes:   domain.DefaultMinNoticeMinutes,
			AdvanceBookingDays: domain.DefaultAdvanceBookingDays,
			PendingHoldMinutes: domain.DefaultPendingHoldMinutes,
		},
		Checkout: CheckoutConfig{
			FeeRateBps:         domain.DefaultFeeRateBps,
			FixedFeeCents:      domain.DefaultFixedFeeCents,
			GracePeriodMinutes: domain.DefaultGracePeriodMinutes,
		},
		Kafka: KafkaConfig{Topic: "scheduling.events"},
		Outbox: OutboxConfig{
			PollIntervalMs: 1000,
			BatchSize:      100,
		},
		RateLimit: RateLimitConfig{
			Limit:         10,
			WindowSeconds: 60,
			FailOpen:      true,
		},
	}
}

// Load читает TOML-файл поверх значений по умолчанию, затем применяет
// переменные окружения (в том числе из .env, если он есть) и валидирует результат
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// .env необязателен: при отсутствии файла используются только переменные процесса
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
		}
		*dst = n
		return nil
	}

	setString("DB_HOST", &c.Database.Host)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.DBName)
	setString("DIRECTORY_URL", &c.Directory.URL)
	setString("REDIS_ADDR", &c.RateLimit.RedisAddr)
	setString("LOG_LEVEL", &c.Logs.Level)

	if err := setInt("DB_PORT", &c.Database.Port); err != nil {
		return err
	}
	if err := setInt("HTTP_PORT", &c.Server.HTTPPort); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}

	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.HTTPPort > 0 && c.Server.HTTPPort <= 65535, "server.http_port out of range: %d", c.Server.HTTPPort)
	check(c.Database.Host != "", "database.host is required")
	check(c.Database.DBName != "", "database.dbname is required")
	check(c.Database.TxMaxAttempts >= 1, "database.tx_max_attempts must be >= 1")
	check(c.Directory.URL != "", "directory.url is required")
	check(c.Scheduling.SlotStepMinutes > 0 && c.Scheduling.SlotStepMinutes <= 24*60,
		"scheduling.slot_step_minutes out of range: %d", c.Scheduling.SlotStepMinutes)
	check(c.Scheduling.MinNoticeMinutes >= 0, "scheduling.min_notice_minutes must be >= 0")
	check(c.Scheduling.AdvanceBookingDays >= 0, "scheduling.advance_booking_days must be >= 0")
	check(c.Scheduling.PendingHoldMinutes >= 0, "scheduling.pending_hold_minutes must be >= 0")
	check(c.Checkout.FeeRateBps >= 0 && c.Checkout.FeeRateBps <= domain.BasisPointsDenominator,
		"checkout.fee_rate_bps out of range: %d", c.Checkout.FeeRateBps)
	check(c.Checkout.FixedFeeCents >= 0, "checkout.fixed_fee_cents must be >= 0")
	check(c.Checkout.GracePeriodMinutes >= 0, "checkout.grace_period_minutes must be >= 0")
	if c.Kafka.Enabled {
		check(len(c.Kafka.Brokers) > 0, "kafka.brokers is required when kafka is enabled")
		check(c.Kafka.Topic != "", "kafka.topic is required when kafka is enabled")
		check(c.Outbox.PollIntervalMs > 0, "outbox.poll_interval_ms must be > 0")
		check(c.Outbox.BatchSize > 0, "outbox.batch_size must be > 0")
	}
	if c.RateLimit.Enabled {
		check(c.RateLimit.RedisAddr != "", "rate_limit.redis_addr is required when rate limiting is enabled")
		check(c.RateLimit.Limit > 0, "rate_limit.limit must be > 0")
		check(c.RateLimit.WindowSeconds > 0, "rate_limit.window_seconds must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
