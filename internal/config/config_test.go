package config

import (
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port=%q want 8080", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl=%s want 24h", cfg.TokenTTL)
	}
	if cfg.RemindersEnabled {
		t.Fatalf("reminders should be disabled by default")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("allowed origins=%v", cfg.AllowedOrigins)
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("REMINDERS_ENABLED", "true")
	t.Setenv("SMTP_HOST", "smtp.example")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Port != "9090" || cfg.TokenTTL != 90*time.Minute || cfg.RedisDB != 3 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("allowed origins=%v", cfg.AllowedOrigins)
	}
	if !cfg.RemindersEnabled {
		t.Fatalf("reminders should be enabled")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{DBConn: "memory", JWTSecret: "jwt", HMACSecret: "hmac", TokenTTL: time.Hour}
	}
	base := valid()
	if err := base.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"empty hmac secret", func(c *Config) { c.HMACSecret = "" }},
		{"empty db conn", func(c *Config) { c.DBConn = "" }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"reminders without smtp", func(c *Config) { c.RemindersEnabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		key, value string
	}{
		{"bad ttl", "TOKEN_TTL", "tomorrow"},
		{"negative ttl", "TOKEN_TTL", "-1h"},
		{"bad redis db", "REDIS_DB", "one"},
		{"reminders without smtp", "REMINDERS_ENABLED", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := NewConfig(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
