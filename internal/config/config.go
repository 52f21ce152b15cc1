package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string

	// Database
	DatabaseURL string

	// Studio policy
	AdminEmails            []string
	AdminDeliveryCompletes bool
	StudioTimezone         string

	// Checkout
	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutCurrency    string
	AppURL              string

	// Email
	ResendAPIKey string
	EmailFrom    string

	// Worker
	RedisURL string

	// MinIO (optional blob store)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Catalog and chat
	PlanCatalogFile        string
	CatalogRefreshSchedule string
	ChatPollInterval       time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	if os.Getenv("ENVIRONMENT") != "production" {
		if err := godotenv.Load(); err == nil {
			slog.Debug("loaded .env file")
		}
	}

	pollInterval, err := time.ParseDuration(getEnv("CHAT_POLL_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_POLL_INTERVAL: %w", err)
	}

	cfg := &Config{
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "submissions"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AdminEmails:            splitList(getEnv("ADMIN_EMAILS", "")),
		AdminDeliveryCompletes: getBool("ADMIN_DELIVERY_COMPLETES", true),
		StudioTimezone:         getEnv("STUDIO_TIMEZONE", "UTC"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutCurrency:    getEnv("CHECKOUT_CURRENCY", "usd"),
		AppURL:              getEnv("APP_URL", "http://localhost:3000"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "StagingPro <noreply@stagingpro.app>"),

		RedisURL: getEnv("REDIS_URL", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "submissions"),
		MinioUseSSL:    getBool("MINIO_USE_SSL", false),

		PlanCatalogFile:        getEnv("PLAN_CATALOG_FILE", ""),
		CatalogRefreshSchedule: getEnv("CATALOG_REFRESH_SCHEDULE", "@every 5m"),
		ChatPollInterval:       pollInterval,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.IsProduction() {
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
		}
	}
	if c.ChatPollInterval <= 0 {
		return fmt.Errorf("CHAT_POLL_INTERVAL must be positive")
	}
	if _, err := time.LoadLocation(c.StudioTimezone); err != nil {
		return fmt.Errorf("invalid STUDIO_TIMEZONE: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location returns the studio time zone used for delivery estimates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StudioTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
