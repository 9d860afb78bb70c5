package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Backend struct {
		BaseURL string `yaml:"baseURL"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		JobCacheTTL   string `yaml:"jobCacheTTL"`
		TickInterval  string `yaml:"tickInterval"`
		SubmitTimeout string `yaml:"submitTimeout"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path, then applies .env and environment overrides.
// A missing file is not an error when every setting comes from the environment.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err):
	default:
		return cfg, err
	}

	_ = godotenv.Load()
	applyEnv(&cfg)
	return cfg, nil
}

// ErrJWTSecretRequired is returned by Validate when a real backend is configured
// without a secret to verify learner tokens.
var ErrJWTSecretRequired = errors.New("auth.jwtSecret (JWT_SECRET) is required when backend.baseURL is set")

// Validate rejects settings that would let unverified tokens pick the learner.
// Without a backend the demo catalog runs and an empty secret is tolerated.
func (c Config) Validate() error {
	if c.Backend.BaseURL != "" && c.Auth.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	return nil
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.Backend.BaseURL, "BACKEND_URL")
	overrideString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.Log.Level, "LOG_LEVEL")
	overrideString(&cfg.Log.Format, "LOG_FORMAT")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideString(&cfg.Postgres.URL, "POSTGRES_URL")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = parseOrigins(v)
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
func parseOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
