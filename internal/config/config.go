package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// State backends for the persisted session.
const (
	StateBackendFile     = "file"
	StateBackendPostgres = "postgres"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port                  string
	APIBaseURL            string
	RequestTimeout        time.Duration
	PollInterval          time.Duration
	StateBackend          string
	StateFile             string
	StateKey              string
	StateProfile          string
	DatabaseURL           string
	DefaultCommissionRate decimal.Decimal
	CORSOrigins           []string
	LogLevel              string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         fallback(os.Getenv("PORT"), "8090"),
		APIBaseURL:   strings.TrimRight(fallback(os.Getenv("API_BASE_URL"), "http://localhost:5000/api"), "/"),
		StateBackend: strings.ToLower(fallback(os.Getenv("STATE_BACKEND"), StateBackendFile)),
		StateFile:    fallback(os.Getenv("STATE_FILE"), defaultStateFile()),
		StateKey:     strings.TrimSpace(os.Getenv("STATE_KEY")),
		StateProfile: fallback(os.Getenv("STATE_PROFILE"), "default"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CORSOrigins:  parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:     strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
	}

	cfg.RequestTimeout = seconds(os.Getenv("REQUEST_TIMEOUT_SECONDS"), 15)
	cfg.PollInterval = seconds(os.Getenv("POLL_INTERVAL_SECONDS"), 5)

	rate, err := decimal.NewFromString(fallback(os.Getenv("DEFAULT_COMMISSION_RATE"), "3"))
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return Config{}, errors.New("DEFAULT_COMMISSION_RATE must be a percentage between 0 and 100")
	}
	cfg.DefaultCommissionRate = rate

	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return Config{}, fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", cfg.APIBaseURL)
	}
	switch cfg.StateBackend {
	case StateBackendFile:
	case StateBackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when STATE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func seconds(value string, def int) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return time.Duration(def) * time.Second
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ledgerdash-state.json"
	}
	return filepath.Join(home, ".ledgerdash", "state.json")
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
