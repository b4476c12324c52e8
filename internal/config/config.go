package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`

	Location            *time.Location  `mapstructure:"TIMEZONE"`
	SessionPrice        decimal.Decimal `mapstructure:"SESSION_PRICE"`
	HorizonDays         int             `mapstructure:"HORIZON_DAYS"`
	AlignToMonday       bool            `mapstructure:"ALIGN_TO_MONDAY"`
	MaterializeInterval time.Duration   `mapstructure:"MATERIALIZE_INTERVAL"`
	MigrationsDir       string          `mapstructure:"MIGRATIONS_DIR"` // пусто - встроенные миграции
	TxMaxRetries        uint64          `mapstructure:"TX_MAX_RETRIES"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	// Читаем напрямую из переменных окружения (после godotenv.Load они там)
	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Environment:   normalizeEnv(os.Getenv("ENV")),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	var err error
	if cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Europe/Moscow")); err != nil {
		return nil, fmt.Errorf("parse TIMEZONE: %w", err)
	}
	if cfg.SessionPrice, err = decimal.NewFromString(getEnv("SESSION_PRICE", "500")); err != nil {
		return nil, fmt.Errorf("parse SESSION_PRICE: %w", err)
	}
	if cfg.SessionPrice.IsNegative() {
		return nil, fmt.Errorf("SESSION_PRICE must not be negative")
	}
	if cfg.HorizonDays, err = getEnvInt("HORIZON_DAYS", 15); err != nil {
		return nil, err
	}
	if cfg.HorizonDays <= 0 {
		return nil, fmt.Errorf("HORIZON_DAYS must be positive")
	}
	if cfg.AlignToMonday, err = getEnvBool("ALIGN_TO_MONDAY", false); err != nil {
		return nil, err
	}
	if cfg.MaterializeInterval, err = time.ParseDuration(getEnv("MATERIALIZE_INTERVAL", "24h")); err != nil {
		return nil, fmt.Errorf("parse MATERIALIZE_INTERVAL: %w", err)
	}
	if cfg.MaterializeInterval <= 0 {
		return nil, fmt.Errorf("MATERIALIZE_INTERVAL must be positive")
	}
	retries, err := getEnvInt("TX_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	if retries < 0 {
		return nil, fmt.Errorf("TX_MAX_RETRIES must not be negative")
	}
	cfg.TxMaxRetries = uint64(retries)

	log.Printf("Config loaded (env=%s, timezone=%s)\n", cfg.Environment, cfg.Location)

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func normalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test":
		return "test"
	default:
		return "development"
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
