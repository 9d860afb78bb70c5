package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9090"
  allowedOrigins: ["http://localhost:5173"]
backend:
  baseURL: http://backend:8080
  timeout: 5s
quiz:
  tickInterval: 1s
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BACKEND_URL", "http://override:8080")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://override:8080" {
		t.Fatalf("expected env override, got %q", cfg.Backend.BaseURL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if got := TTLDuration(cfg.Backend.Timeout, time.Second); got != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", got)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://quiz@localhost/quiz")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://quiz@localhost/quiz" {
		t.Fatalf("expected postgres url from env, got %q", cfg.Postgres.URL)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %s", got)
	}
}

func TestValidateRequiresSecretWithBackend(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("demo config should validate: %v", err)
	}

	cfg.Backend.BaseURL = "http://backend:8080"
	if err := cfg.Validate(); !errors.Is(err, ErrJWTSecretRequired) {
		t.Fatalf("expected missing secret error, got %v", err)
	}

	cfg.Auth.JWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
