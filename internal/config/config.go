// Package config loads intakectl process configuration from the
// environment and an optional config file.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends understood by intakectl.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMongo    = "mongo"
)

// EnvPrefix is prepended to every environment variable, e.g.
// INTAKE_STORAGE=redis.
const EnvPrefix = "INTAKE"

type Config struct {
	Storage         string `mapstructure:"STORAGE"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	MongoURI        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`
	MongoCollection string `mapstructure:"MONGO_COLLECTION"`
	KeyPrefix       string `mapstructure:"KEY_PREFIX"`

	LogLevel string `mapstructure:"LOG_LEVEL"`

	PatientID string `mapstructure:"PATIENT_ID"`
	Category  string `mapstructure:"CATEGORY"`

	CheckoutURL       string `mapstructure:"CHECKOUT_URL"`
	ProductSummaryURL string `mapstructure:"PRODUCT_SUMMARY_URL"`
	ProductFirst      bool   `mapstructure:"PRODUCT_FIRST"`
	ProductID         string `mapstructure:"PRODUCT_ID"`
	PriceID           string `mapstructure:"PRICE_ID"`

	SkipStepAcknowledgement bool `mapstructure:"SKIP_STEP_ACKNOWLEDGEMENT"`
}

var keys = []string{
	"STORAGE", "SQLITE_PATH", "DATABASE_URL", "REDIS_URL", "MONGO_URI",
	"MONGO_DATABASE", "MONGO_COLLECTION", "KEY_PREFIX", "LOG_LEVEL",
	"PATIENT_ID", "CATEGORY", "CHECKOUT_URL", "PRODUCT_SUMMARY_URL",
	"PRODUCT_FIRST", "PRODUCT_ID", "PRICE_ID", "SKIP_STEP_ACKNOWLEDGEMENT",
}

// Load reads configuration. Environment variables win over the file. When
// path is empty a .env file in the working directory is used if present;
// an explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("STORAGE", StorageSQLite)
	v.SetDefault("SQLITE_PATH", "intake.db")
	v.SetDefault("MONGO_DATABASE", "intake")
	v.SetDefault("MONGO_COLLECTION", "state")
	v.SetDefault("KEY_PREFIX", "intake:")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PATIENT_ID", "local-patient")
	v.SetDefault("CATEGORY", "weight-loss")
	v.SetDefault("PRODUCT_SUMMARY_URL", "http://localhost:3000/products")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigFile(".env")
		_ = v.ReadInConfig()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	return cfg, nil
}

// Validate checks that the selected storage backend has what it needs.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for storage %q", c.Storage)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage %q", c.Storage)
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for storage %q", c.Storage)
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for storage %q", c.Storage)
		}
	default:
		return fmt.Errorf("STORAGE must be one of memory, sqlite, postgres, redis, mongo; got %q", c.Storage)
	}

	if c.Category == "" {
		return fmt.Errorf("CATEGORY is required")
	}
	if c.ProductFirst && c.ProductID == "" {
		return fmt.Errorf("PRODUCT_ID is required when PRODUCT_FIRST is true")
	}
	if c.ProductSummaryURL == "" && c.CheckoutURL == "" {
		return fmt.Errorf("one of PRODUCT_SUMMARY_URL or CHECKOUT_URL is required")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}
