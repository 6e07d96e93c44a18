package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/receipts/internal/matching"
)

type Config struct {
	App struct {
		Name           string   `envconfig:"APP_NAME" default:"Receipts"`
		Port           int      `envconfig:"PORT" default:"8080"`
		AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ledger"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Queue struct {
		// Empty keeps the offline queue in memory only.
		Path string `envconfig:"QUEUE_PATH" default:""`
	}

	Digital struct {
		URL        string `envconfig:"DIGITAL_URL"`
		SigningKey string `envconfig:"DIGITAL_SIGNING_KEY"`
		UserID     string `envconfig:"DIGITAL_USER_ID"`
		// CSVPath reads the feed from an export file when no URL is set.
		CSVPath string        `envconfig:"DIGITAL_CSV_PATH"`
		Timeout time.Duration `envconfig:"DIGITAL_TIMEOUT" default:"15s"`
	}

	Scan struct {
		URL     string        `envconfig:"SCAN_URL" default:"http://localhost:8000"`
		Token   string        `envconfig:"SCAN_TOKEN"`
		Timeout time.Duration `envconfig:"SCAN_TIMEOUT" default:"60s"`
	}

	Matching struct {
		MinConfidence      float64 `envconfig:"MATCH_MIN_CONFIDENCE" default:"0.4"`
		MaxResults         int     `envconfig:"MATCH_MAX_RESULTS" default:"5"`
		MaxDaysApart       int     `envconfig:"MATCH_MAX_DAYS_APART" default:"14"`
		AmountWeight       float64 `envconfig:"MATCH_AMOUNT_WEIGHT" default:"0.5"`
		DateWeight         float64 `envconfig:"MATCH_DATE_WEIGHT" default:"0.3"`
		MerchantWeight     float64 `envconfig:"MATCH_MERCHANT_WEIGHT" default:"0.2"`
		AmountTolerancePct float64 `envconfig:"MATCH_AMOUNT_TOLERANCE_PCT" default:"0.05"`
		AmountToleranceAbs string  `envconfig:"MATCH_AMOUNT_TOLERANCE_ABS" default:"0.50"`
		DateWindowDays     int     `envconfig:"MATCH_DATE_WINDOW_DAYS" default:"7"`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// ToMatching overlays the configured scoring constants on the defaults.
func (c *Config) ToMatching() (matching.Config, error) {
	m := c.Matching
	cfg := matching.DefaultConfig()

	tol, err := decimal.NewFromString(m.AmountToleranceAbs)
	if err != nil {
		return matching.Config{}, fmt.Errorf("parsing MATCH_AMOUNT_TOLERANCE_ABS: %w", err)
	}

	cfg.MinConfidence = m.MinConfidence
	cfg.MaxResults = m.MaxResults
	cfg.MaxDaysApart = m.MaxDaysApart
	cfg.AmountWeight = m.AmountWeight
	cfg.DateWeight = m.DateWeight
	cfg.MerchantWeight = m.MerchantWeight
	cfg.AmountTolerancePct = m.AmountTolerancePct
	cfg.AmountToleranceAbs = tol
	cfg.DateWindowDays = m.DateWindowDays

	if err := cfg.Validate(); err != nil {
		return matching.Config{}, fmt.Errorf("invalid matching config: %w", err)
	}

	return cfg, nil
}

func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Validate() error {
	if c.Digital.URL == "" && c.Digital.CSVPath == "" {
		return errors.New("one of DIGITAL_URL or DIGITAL_CSV_PATH is required")
	}

	if c.Digital.URL != "" && c.Digital.SigningKey == "" {
		return errors.New("DIGITAL_SIGNING_KEY is required with DIGITAL_URL")
	}

	if c.Scan.URL == "" {
		return errors.New("SCAN_URL is required")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
