package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DBUrl                string
	JWTSecret            string
	SessionTTL           time.Duration
	CookieSecure         bool
	CORSAllowOrigins     string
	AppEnv               string
	AppBaseURL           string
	EnableDocs           bool
	SupabaseURL          string
	SupabaseBucket       string
	SupabaseServiceKey   string
	ResendAPIKey         string
	EmailFrom            string
	DefaultAdminEmail    string
	DefaultAdminPassword string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	appEnv := normalizeEnv(getEnv("APP_ENV", "production"))

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DBUrl:                getEnv("DB_URL", ""),
		JWTSecret:            jwtSecret,
		SessionTTL:           getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:         getEnvBool("COOKIE_SECURE", appEnv == "production"),
		CORSAllowOrigins:     getEnv("CORS_ALLOW_ORIGINS", ""),
		AppEnv:               appEnv,
		AppBaseURL:           strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		EnableDocs:           getEnvBool("ENABLE_API_DOCS", false),
		SupabaseURL:          getEnv("SUPABASE_URL", ""),
		SupabaseBucket:       getEnv("SUPABASE_BUCKET", ""),
		SupabaseServiceKey:   getEnv("SUPABASE_SERVICE_KEY", ""),
		ResendAPIKey:         getEnv("RESEND_API_KEY", ""),
		EmailFrom:            getEnv("EMAIL_FROM", "Fitzo <no-reply@fitzo.app>"),
		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", ""),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}

func (c *Config) StorageConfigured() bool {
	return c != nil && c.SupabaseURL != "" && c.SupabaseBucket != "" && c.SupabaseServiceKey != ""
}

func (c *Config) EmailConfigured() bool {
	return c != nil && c.ResendAPIKey != "" && c.EmailFrom != ""
}
