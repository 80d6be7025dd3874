package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel  string
	LogFormat string

	// Zepp account credentials.
	ZeppEmail    string `validate:"required,email"`
	ZeppPassword string `validate:"required"`

	// Timezone the report (window resolution and timestamps) is anchored to.
	Timezone string `validate:"required,timezone"`

	// Output paths.
	CSVPath    string
	XLSXPath   string
	ReportPath string

	// OpenAI analysis (optional).
	OpenAIAPIKey string
	OpenAIModel  string

	// SMTP report delivery (optional).
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
	MailTo   string

	// Postgres night archive (optional; disabled when empty).
	DatabaseURL string

	// Redis summary cache (optional; disabled when empty).
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Langfuse tracing and prompt management (optional).
	LangfuseBaseURL   string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseEnv       string
	PromptName        string
	PromptLabel       string
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
		_, err := time.LoadLocation(fl.Field().String())
		return err == nil
	})
}

func Load() *Config {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		ZeppEmail:    getEnv("ZEPP_EMAIL", ""),
		ZeppPassword: getEnv("ZEPP_PASSWORD", ""),

		Timezone: getEnv("TIMEZONE", "Europe/Madrid"),

		CSVPath:    getEnv("CSV_PATH", "sleep_export.csv"),
		XLSXPath:   getEnv("XLSX_PATH", "sleep_export.xlsx"),
		ReportPath: getEnv("REPORT_PATH", "sleep_report_ai.md"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_SLEEP_REPORT_MODEL", "gpt-4o-mini"),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnvInt("SMTP_PORT", 465),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", getEnv("SMTP_USER", "")),
		MailTo:   getEnv("MAIL_TO", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 0),

		LangfuseBaseURL:   getEnv("LANGFUSE_BASE_URL", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseEnv:       getEnv("LANGFUSE_ENV", "development"),
		PromptName:        getEnv("LANGFUSE_PROMPT_NAME", ""),
		PromptLabel:       getEnv("LANGFUSE_PROMPT_LABEL", "production"),
	}
}

// Validate checks the fields the run cannot start without.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return fmt.Errorf("config: field %s failed %q validation", first.Field(), first.Tag())
	}
	return fmt.Errorf("config: %w", err)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
