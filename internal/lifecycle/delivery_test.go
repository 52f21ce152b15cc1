package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/lifecycle"
)

func TestEstimatedDelivery(t *testing.T) {
	tests := []struct {
		name  string
		order time.Time
		want  time.Time
	}{
		{"monday to thursday", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), time.Date(2024, 1, 18, 9, 0, 0, 0, time.UTC)},
		{"wednesday to monday", time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC), time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)},
		{"friday to wednesday", time.Date(2024, 1, 19, 23, 59, 0, 0, time.UTC), time.Date(2024, 1, 24, 23, 59, 0, 0, time.UTC)},
		{"saturday to wednesday", time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC), time.Date(2024, 1, 24, 12, 0, 0, 0, time.UTC)},
		{"sunday to wednesday", time.Date(2024, 1, 21, 12, 0, 0, 0, time.UTC), time.Date(2024, 1, 24, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lifecycle.EstimatedDelivery(tt.order.UnixMilli(), time.UTC)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEstimatedDelivery_Deterministic(t *testing.T) {
	ts := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, lifecycle.EstimatedDelivery(ts, time.UTC), lifecycle.EstimatedDelivery(ts, time.UTC))
	assert.Equal(t, time.Wednesday, lifecycle.EstimatedDelivery(ts, time.UTC).Weekday())
}

func TestEstimatedDelivery_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// Thursday 20:00 UTC is already Friday in Tokyo.
	ts := time.Date(2024, 1, 18, 20, 0, 0, 0, time.UTC).UnixMilli()

	assert.Equal(t, time.Tuesday, lifecycle.EstimatedDelivery(ts, time.UTC).Weekday())
	got := lifecycle.EstimatedDelivery(ts, tokyo)
	assert.Equal(t, time.Wednesday, got.Weekday())
	assert.Equal(t, 24, got.Day())

	assert.Equal(t, lifecycle.EstimatedDelivery(ts, time.UTC), lifecycle.EstimatedDelivery(ts, nil))
}
