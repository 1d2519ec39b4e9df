package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// Storage
	StorageDriver     string // memory, sqlite, postgres
	DatabaseURL       string
	SQLitePath        string
	TablePrefix       string
	StorageQuotaBytes int64 // 0 = unlimited (memory and sqlite drivers)

	// Auth
	JWTSecret   string
	TokenTTL    time.Duration
	AuthJWKSURL string // optional external identity provider

	// LLM Configuration
	GeminiAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	TavilyAPIKey    string
	DefaultModel    string
	LLMTimeout      time.Duration

	// Logging
	LogDir      string
	MaxLogFiles int

	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		StorageDriver:     getEnv("STORAGE_DRIVER", "sqlite"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "data/dharmabot.db"),
		TablePrefix:       getTablePrefix(env),
		StorageQuotaBytes: getEnvInt64("STORAGE_QUOTA_BYTES", 0),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		TavilyAPIKey:    getEnv("TAVILY_API_KEY", ""),
		DefaultModel:    getEnv("DEFAULT_MODEL", "gemini-2.5-flash"),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 2*time.Minute),

		LogDir:      getEnv("LOG_DIR", ""),
		MaxLogFiles: int(getEnvInt64("MAX_LOG_FILES", 10)),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
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
