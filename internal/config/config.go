package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration
type Config struct {
	Port       string        `env:"PORT" envDefault:"8080"`
	DBConn     string        `env:"DB_CONN" envDefault:"host=localhost port=5432 user=test password=test dbname=marathon sslmode=disable"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"INFO"`
	JWTSecret  string        `env:"JWT_SECRET" envDefault:"secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	HMACSecret string        `env:"HMAC_SECRET" envDefault:"a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SenderEmail  string `env:"SENDER_EMAIL" envDefault:"noreply@money-marathon.local"`

	RemindersEnabled bool   `env:"REMINDERS_ENABLED" envDefault:"false"`
	ReminderSchedule string `env:"REMINDER_SCHEDULE" envDefault:"0 8 * * *"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000" envSeparator:","`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.AllowedOrigins = cleanList(cfg.AllowedOrigins)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.HMACSecret == "" {
		return fmt.Errorf("HMAC_SECRET is required")
	}
	if c.RemindersEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when REMINDERS_ENABLED is set")
	}
	return nil
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
