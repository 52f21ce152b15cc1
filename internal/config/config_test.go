package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAILS", " Boss@Studio.com , ,ops@studio.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Boss@Studio.com", "ops@studio.com"}, cfg.AdminEmails)
	assert.True(t, cfg.AdminDeliveryCompletes)
	assert.Equal(t, 5*time.Second, cfg.ChatPollInterval)
	assert.Equal(t, "@every 5m", cfg.CatalogRefreshSchedule)
	assert.Equal(t, "usd", cfg.CheckoutCurrency)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.MinioEnabled())
}

func TestLoad_PolicyFlagAndTimezone(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("ADMIN_DELIVERY_COMPLETES", "false")
	t.Setenv("STUDIO_TIMEZONE", "America/New_York")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.False(t, cfg.AdminDeliveryCompletes)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{StudioTimezone: "UTC", ChatPollInterval: time.Second}
	assert.Error(t, cfg.Validate())

	cfg.SupabaseJWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg.SupabaseURL = "https://x.supabase.co"
	cfg.SupabaseServiceKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg.StudioTimezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}
