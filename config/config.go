package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	Port string

	// Database configuration
	DatabaseURL string

	// Session configuration
	JWTSecret       string
	TokenTTLHours   int
	BcryptCost      int
	LoginRatePerMin int

	// Earnings job configuration
	CronSecret string

	// PIX receiver configuration
	PixReceiverKey  string
	PixReceiverName string
	PixReceiverCity string

	// Outbound notifications (optional)
	WebhookURL string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine in production, the variables come from the host.
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on process environment")
	}

	config := &Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTLHours:   24,
		BcryptCost:      10,
		LoginRatePerMin: 10,

		CronSecret: os.Getenv("CRON_JOB_SECRET"),

		PixReceiverKey:  getEnv("PIX_RECEIVER_KEY", ""),
		PixReceiverName: getEnv("PIX_RECEIVER_NAME", ""),
		PixReceiverCity: getEnv("PIX_RECEIVER_CITY", "NA"),

		WebhookURL: os.Getenv("WEBHOOK_URL"),

		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if ttl := os.Getenv("TOKEN_TTL_HOURS"); ttl != "" {
		if parsed, err := strconv.Atoi(ttl); err == nil && parsed > 0 {
			config.TokenTTLHours = parsed
		}
	}
	if rate := os.Getenv("LOGIN_RATE_PER_MIN"); rate != "" {
		if parsed, err := strconv.Atoi(rate); err == nil && parsed > 0 {
			config.LoginRatePerMin = parsed
		}
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.CronSecret == "" {
			return nil, fmt.Errorf("CRON_JOB_SECRET is required")
		}
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
