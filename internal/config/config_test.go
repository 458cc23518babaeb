package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "postgres://localhost:5432/booking")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 8, cfg.OpenHour)
	assert.Equal(t, 20, cfg.CloseHour)
	assert.Equal(t, 60, cfg.SlotLengthMinutes)
	assert.Equal(t, 30, cfg.GraceMinutes)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Run("missing DB_DSN", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("JWT_SECRET", "test-secret")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("missing JWT_SECRET", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost:5432/booking")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadValidation(t *testing.T) {
	t.Run("inverted operating hours", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("OPEN_HOUR", "20")
		t.Setenv("CLOSE_HOUR", "8")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-numeric slot length", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SLOT_LENGTH_MINUTES", "sixty")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative grace window", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GRACE_MINUTES", "-5")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production flag", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("PROD_ORIGINS", "https://booking.example.com")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction)
		assert.Equal(t, "https://booking.example.com", cfg.ProdOrigins)
	})
}
