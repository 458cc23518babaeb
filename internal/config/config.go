package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	RedisAddr         string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Slot materialization settings. Slots are generated between OpenHour and
	// CloseHour (whole hours, 0-24) in SlotLengthMinutes steps.
	OpenHour          int
	CloseHour         int
	SlotLengthMinutes int

	// GraceMinutes is the minimum lead time before a slot's start within which
	// a confirmed booking may no longer be cancelled.
	GraceMinutes int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// Redis address for the event sink (optional; fan-out is log-only when unset)
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Operating hours and slot length for materialization
	cfg.OpenHour, err = getEnvAsInt("OPEN_HOUR", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid OPEN_HOUR: %w", err)
	}
	cfg.CloseHour, err = getEnvAsInt("CLOSE_HOUR", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid CLOSE_HOUR: %w", err)
	}
	if cfg.OpenHour < 0 || cfg.CloseHour > 24 || cfg.OpenHour >= cfg.CloseHour {
		return nil, fmt.Errorf("invalid operating hours: OPEN_HOUR=%d CLOSE_HOUR=%d", cfg.OpenHour, cfg.CloseHour)
	}

	cfg.SlotLengthMinutes, err = getEnvAsInt("SLOT_LENGTH_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid SLOT_LENGTH_MINUTES: %w", err)
	}
	if cfg.SlotLengthMinutes < 1 {
		return nil, fmt.Errorf("SLOT_LENGTH_MINUTES must be positive")
	}

	// Cancellation grace window (default: 30 minutes)
	cfg.GraceMinutes, err = getEnvAsInt("GRACE_MINUTES", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid GRACE_MINUTES: %w", err)
	}
	if cfg.GraceMinutes < 0 {
		return nil, fmt.Errorf("GRACE_MINUTES must not be negative")
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}
