package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/carwise/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "carwise", cfg.Database)
	assert.Equal(t, ":8080", cfg.GatewayAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"09:00", "12:00", "18:00"}, cfg.ReminderTimes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.AdminChatIDs)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadAdminChatIDs(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_CHAT_IDS", "123, 456,789")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{123, 456, 789}, cfg.AdminChatIDs)
	assert.True(t, cfg.IsAdmin(456))
	assert.False(t, cfg.IsAdmin(999))
	assert.Equal(t, int64(123), cfg.FeedbackChatID())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad chat id", "ADMIN_CHAT_IDS", "123,abc"},
		{"bad session ttl", "SESSION_TTL", "soon"},
		{"bad reminder time", "REMINDER_TIMES", "09:00,25:70"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestFeedbackChatIDUnconfigured(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, int64(0), cfg.FeedbackChatID())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "AI-95", FuelTypeLabel(models.Fuel95))
	assert.Equal(t, "Diesel", FuelTypeLabel(models.FuelDiesel))
	// Unknown codes fall back to the raw value.
	assert.Equal(t, "e100", FuelTypeLabel(models.FuelType("e100")))

	assert.Equal(t, "Scheduled service", CategoryLabel(models.CategoryService))
	assert.Equal(t, "tuning", CategoryLabel(models.MaintenanceCategory("tuning")))
}
