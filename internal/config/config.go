package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	TransportInline = "inline"
	TransportAsynq  = "asynq"
)

type Config struct {
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:"timecontrol.db"`
	Country        string `envconfig:"COUNTRY" default:"LV"`
	HolidaysFile   string `envconfig:"HOLIDAYS_FILE"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	EditWindowMinutes      int `envconfig:"EDIT_WINDOW_MINUTES" default:"30"`
	DailyLimitMinutes      int `envconfig:"DAILY_LIMIT_MINUTES" default:"480"`
	FirstEntryBreakMinutes int `envconfig:"FIRST_ENTRY_BREAK_MINUTES" default:"60"`
	MissingEntryDays       int `envconfig:"MISSING_ENTRY_DAYS" default:"5"`

	EventTransport    string `envconfig:"EVENT_TRANSPORT" default:"inline"`
	RedisAddr         string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`

	TelegramToken       string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `envconfig:"TELEGRAM_ADMIN_CHAT_ID"`
}

var (
	instance *Config
	once     sync.Once
)

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Country = strings.ToUpper(strings.TrimSpace(c.Country))
	if c.Country == "" {
		return errors.New("COUNTRY must not be empty")
	}

	switch c.EventTransport {
	case TransportInline, TransportAsynq:
	default:
		return fmt.Errorf("unknown EVENT_TRANSPORT: %s", c.EventTransport)
	}

	if c.EditWindowMinutes < 0 || c.DailyLimitMinutes <= 0 || c.FirstEntryBreakMinutes < 0 {
		return errors.New("time entry limits must be positive")
	}
	if c.MissingEntryDays <= 0 {
		return errors.New("MISSING_ENTRY_DAYS must be positive")
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = 1
	}
	return nil
}

// GetConfig возвращает конфигурацию процесса, загружая ее один раз
func GetConfig() *Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading config: %s", err.Error())
		}
		instance = cfg
	})
	return instance
}

func (c *Config) EditWindow() time.Duration {
	return time.Duration(c.EditWindowMinutes) * time.Minute
}

// TelegramEnabled - уведомления в Telegram настроены
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}
