package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"babymind/internal/validation"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// RulesPath points at a YAML rule-table file; empty uses the built-in tables
	RulesPath string

	JWTSecret   string
	AdminSecret string
	TokenTTL    time.Duration

	LevelThreshold int

	ReminderSchedule  string
	DailyTaskSchedule string

	SESRegion    string
	SESFromEmail string
	SESFromName  string
	ReminderTo   string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:        getEnv("PORT", "8080"),
		DatabaseType:      getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:      getEnv("DB_PATH", "./babymind.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		RulesPath:         getEnv("RULES_PATH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AdminSecret:       getEnv("ADMIN_SECRET", ""),
		TokenTTL:          getDuration("TOKEN_TTL", 30*24*time.Hour),
		LevelThreshold:    getInt("LEVEL_THRESHOLD", 100),
		ReminderSchedule:  getEnv("REMINDER_SCHEDULE", "@every 1m"),
		DailyTaskSchedule: getEnv("DAILY_TASK_SCHEDULE", "5 0 * * *"),
		SESRegion:         getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "BabyMind"),
		ReminderTo:        getEnv("REMINDER_EMAIL", ""),
		Debug:             getEnv("DEBUG", "false") == "true",
	}
}

// Validate checks values the server cannot start without or that would
// only fail later at send time
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SESFromEmail != "" {
		if err := validation.ValidateEmail(c.SESFromEmail); err != nil {
			errs = append(errs, fmt.Errorf("SES_FROM_EMAIL: %w", err))
		}
	}
	if c.ReminderTo != "" {
		if err := validation.ValidateEmail(c.ReminderTo); err != nil {
			errs = append(errs, fmt.Errorf("REMINDER_EMAIL: %w", err))
		}
	}
	return errors.Join(errs...)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
