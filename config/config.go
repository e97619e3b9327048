package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency  int
	RateLimitMs     int
	MaxRetries      int
	ScoutTimeoutSec int
	LimitEach       int

	FeesPct   float64
	TargetROI float64

	ChromeBin string

	ResendAPIKey string
	FromEmail    string

	StripeWebhookSecret string
	ProductName         string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scout"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scout123"),
		PostgresDB:       getEnv("POSTGRES_DB", "scout_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 1000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		ScoutTimeoutSec: getEnvInt("SCOUT_TIMEOUT_SEC", 25),
		LimitEach:       getEnvInt("SCOUT_LIMIT_EACH", 6),

		FeesPct:   getEnvFloat("FEES_PCT", 0.13),
		TargetROI: getEnvFloat("TARGET_ROI", 0.70),

		ChromeBin: getEnv("CHROME_BIN", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "Flea Scout <no-reply@example.com>"),

		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		ProductName:         getEnv("PRODUCT_NAME", "Flea Scout Pro ($10)"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
