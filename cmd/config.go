package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	HTTPPort   string `envconfig:"HTTP_PORT" default:"8080"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"shoecare"`
	DBSslMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	Store               string `envconfig:"STORE" default:"postgres"`
	RedisAddr           string `envconfig:"REDIS_ADDR"`
	EventsChannelPrefix string `envconfig:"EVENTS_CHANNEL_PREFIX" default:"shoecare"`

	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	UploadBaseURL string `envconfig:"UPLOAD_BASE_URL" default:"/uploads"`

	LoyaltyRate       string `envconfig:"LOYALTY_RATE" default:"0.01"`
	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"0 * * * * *"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	Development       bool   `envconfig:"DEVELOPMENT" default:"false"`
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values envconfig cannot.
func (c Config) Validate() error {
	var joined []error
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		joined = append(joined, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		joined = append(joined, errors.New("JWT_SECRET must be provided"))
	}
	if _, err := c.LoyaltyRateDecimal(); err != nil {
		joined = append(joined, err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		joined = append(joined, err)
	}
	return errors.Join(joined...)
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoyaltyRateDecimal parses LOYALTY_RATE; points earned are floor(subtotal x rate).
func (c Config) LoyaltyRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.LoyaltyRate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("LOYALTY_RATE: %w", err)
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("LOYALTY_RATE must not be negative, got %s", rate)
	}
	return rate, nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
