package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      string
	HTTPAddr string

	PostgresDSN string
	DBPath      string
	RedisURL    string

	CORSOrigins  []string
	CookieSecure bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	PageSize     int

	LogLevel  string
	LogFormat string

	AdminUsername string
	AdminPassword string

	DiscordWebhookURL string

	SheetsCredentialsFile string
	SheetsURL             string
	SheetsTab             string

	DemoHalfLength int
}

func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// Load reads .env files outside Lambda and then the process environment.
func Load() Config {
	if !InLambda() {
		_ = godotenv.Load(".env", ".env.local")
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		App:      strings.ToLower(getEnv("APP", "dev")),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		DBPath:      getEnv("DB_PATH", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		AccessTTL:    getEnvDuration("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:   getEnvDuration("REFRESH_TTL", 7*24*time.Hour),
		PageSize:     getEnvInt("PAGE_SIZE", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),

		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
		SheetsURL:             getEnv("SHEETS_URL", ""),
		SheetsTab:             getEnv("SHEETS_TAB", "Leaderboard"),

		DemoHalfLength: getEnvInt("DEMO_HALF_LENGTH", 12),
	}
}

func (c Config) IsProd() bool {
	return c.App == "prod"
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if raw := getEnv(key, ""); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if raw := getEnv(key, ""); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if raw := getEnv(key, ""); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
