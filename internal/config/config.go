package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App   AppConfig
	Redis RedisConfig
	JWT   JWTConfig
	MinIO MinIOConfig
	Store StoreConfig
}

type AppConfig struct {
	Name           string
	Environment    string // development, staging, production
	Port           string
	Version        string
	PublicURL      string
	AllowedOrigins []string // empty means allow all, without credentials
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig carries storefront business knobs used by the order calculator.
type StoreConfig struct {
	TaxRate               decimal.Decimal // 0 disables tax
	FreeShippingThreshold decimal.Decimal // subtotal at which shipping is free
	FlatShippingFee       decimal.Decimal
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	taxRate, err := getEnvDecimal("STORE_TAX_RATE", "0")
	if err != nil {
		return nil, err
	}
	freeShipping, err := getEnvDecimal("STORE_FREE_SHIPPING_THRESHOLD", "50")
	if err != nil {
		return nil, err
	}
	flatShipping, err := getEnvDecimal("STORE_FLAT_SHIPPING_FEE", "5")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Storefront API"),
			Environment:    getEnv("APP_ENV", "development"),
			Port:           getEnv("APP_PORT", "8080"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			PublicURL:      getEnv("APP_PUBLIC_URL", "http://localhost:8080"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 15),
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "storefront"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Store: StoreConfig{
			TaxRate:               taxRate,
			FreeShippingThreshold: freeShipping,
			FlatShippingFee:       flatShipping,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks config consistency.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	if c.Store.TaxRate.IsNegative() {
		return fmt.Errorf("STORE_TAX_RATE must not be negative")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
