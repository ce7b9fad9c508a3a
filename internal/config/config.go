package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/joho/godotenv"
)

// Config armazena as configurações da aplicação
type Config struct {
	ClickUpAPIKey   string
	ClickUpBaseURL  string
	TokenAPI        string
	Port            string
	GinMode         string
	LogLevel        string
	LogJSON         bool
	RequestInterval time.Duration
	CacheTTL        time.Duration
	DatabaseURL     string
	WebhookURL      string
}

const (
	DefaultRequestInterval = 300 * time.Millisecond
	DefaultCacheTTL        = 5 * time.Minute
)

// Load carrega as configurações do ambiente (.env opcional)
func Load() (*Config, error) {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	return FromEnv(os.Getenv)
}

// FromEnv monta a Config a partir de uma função de lookup (os.Getenv em produção)
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		ClickUpAPIKey:  getenv("CLICKUP_API_KEY"),
		ClickUpBaseURL: getenv("CLICKUP_BASE_URL"),
		TokenAPI:       getenv("TOKEN_API"),
		Port:           getenv("PORT"),
		GinMode:        getenv("GIN_MODE"),
		LogLevel:       getenv("LOG_LEVEL"),
		LogJSON:        parseBool(getenv("LOG_JSON")),
		DatabaseURL:    getenv("DATABASE_URL"),
		WebhookURL:     getenv("WEBHOOK_URL"),
	}

	if cfg.ClickUpAPIKey == "" {
		return nil, model.ErrMissingAPIKey
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.RequestInterval = parseMillis(getenv("REQUEST_INTERVAL_MS"), DefaultRequestInterval)
	cfg.CacheTTL = parseSeconds(getenv("CACHE_TTL_SECONDS"), DefaultCacheTTL)

	return cfg, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseMillis(s string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}

func parseSeconds(s string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
