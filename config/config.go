package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenExpiryHours    = 24
	DefaultRefreshThresholdMin = 60
	DefaultSweepIntervalHours  = 12
)

type Config struct {
	Env              string
	Port             string
	DBURL            string
	JWTSecret        string
	TokenExpiry      time.Duration
	RefreshThreshold time.Duration
	SweepInterval    time.Duration
	BcryptCost       int
	TOTPIssuer       string
}

func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DBURL:            mustGetEnv("DB_URL"),
		JWTSecret:        mustGetEnv("JWT_SECRET"),
		TokenExpiry:      time.Duration(getEnvAsInt("TOKEN_EXPIRY_HOURS", DefaultTokenExpiryHours)) * time.Hour,
		RefreshThreshold: time.Duration(getEnvAsInt("REFRESH_THRESHOLD_MIN", DefaultRefreshThresholdMin)) * time.Minute,
		SweepInterval:    time.Duration(getEnvAsInt("SWEEP_INTERVAL_HOURS", DefaultSweepIntervalHours)) * time.Hour,
		BcryptCost:       getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		TOTPIssuer:       getEnv("TOTP_ISSUER", "STOCKWISE"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
