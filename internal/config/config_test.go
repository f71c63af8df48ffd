package config

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadConfigAppliesDefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("APP_BASE_URL", "https://fitzo.example/")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("expected normalized development env, got %q", cfg.AppEnv)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected 2h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.AppBaseURL != "https://fitzo.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.AppBaseURL)
	}
	if cfg.CookieSecure {
		t.Fatalf("expected insecure cookies outside production")
	}
}

func TestGetEnvDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	if got := getEnvDuration("SESSION_TTL", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestDocsEnabledOnlyInDevelopment(t *testing.T) {
	if (&Config{EnableDocs: true, AppEnv: "production"}).DocsEnabled() {
		t.Fatalf("docs must stay off in production")
	}
	if !(&Config{EnableDocs: true, AppEnv: "development"}).DocsEnabled() {
		t.Fatalf("docs should be on in development when enabled")
	}
}
