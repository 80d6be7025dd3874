package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CFG_VALUE", "custom")
	if got := getEnv("CFG_VALUE", "default"); got != "custom" {
		t.Fatalf("getEnv returned %q, want custom", got)
	}

	// Empty environment value should fall back to default
	t.Setenv("CFG_EMPTY", "")
	if got := getEnv("CFG_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("getEnv returned %q, want fallback", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("CFG_INT", "587")
	if got := getEnvInt("CFG_INT", 465); got != 587 {
		t.Fatalf("getEnvInt returned %d, want 587", got)
	}
	t.Setenv("CFG_INT", "not-a-number")
	if got := getEnvInt("CFG_INT", 465); got != 465 {
		t.Fatalf("getEnvInt returned %d, want default 465", got)
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{
		"LOG_LEVEL", "LOG_FORMAT", "ZEPP_EMAIL", "ZEPP_PASSWORD", "TIMEZONE",
		"CSV_PATH", "SMTP_PORT", "OPENAI_SLEEP_REPORT_MODEL", "CACHE_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.LogLevel != "info" || cfg.Timezone != "Europe/Madrid" || cfg.SMTPPort != 465 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.CSVPath != "sleep_export.csv" || cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	t.Setenv("ZEPP_EMAIL", "user@example.com")
	t.Setenv("ZEPP_PASSWORD", "secret")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("CACHE_TTL", "48h")

	cfg = Load()
	if cfg.ZeppEmail != "user@example.com" || cfg.Timezone != "UTC" || cfg.SMTPPort != 587 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.CacheTTL != 48*time.Hour {
		t.Fatalf("CacheTTL = %v, want 48h", cfg.CacheTTL)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		ZeppEmail:    "user@example.com",
		ZeppPassword: "secret",
		Timezone:     "Europe/Madrid",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing email", func(c *Config) { c.ZeppEmail = "" }},
		{"malformed email", func(c *Config) { c.ZeppEmail = "not-an-email" }},
		{"missing password", func(c *Config) { c.ZeppPassword = "" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
