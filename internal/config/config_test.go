package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "API_BASE_URL", "REQUEST_TIMEOUT_SECONDS", "POLL_INTERVAL_SECONDS",
		"STATE_BACKEND", "STATE_FILE", "STATE_KEY", "STATE_PROFILE", "DATABASE_URL",
		"DEFAULT_COMMISSION_RATE", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, ":8090", cfg.HTTPAddress())
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, StateBackendFile, cfg.StateBackend)
	assert.NotEmpty(t, cfg.StateFile)
	assert.Equal(t, "default", cfg.StateProfile)
	assert.Equal(t, "3", cfg.DefaultCommissionRate.String())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://ledger.example.com/api/")
	t.Setenv("POLL_INTERVAL_SECONDS", "30")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "nope")
	t.Setenv("DEFAULT_COMMISSION_RATE", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://ledger.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "2.5", cfg.DefaultCommissionRate.String())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"STATE_BACKEND": "postgres"},
		"unknown backend":      {"STATE_BACKEND": "redis"},
		"bad base url":         {"API_BASE_URL": "localhost:5000"},
		"bad rate":             {"DEFAULT_COMMISSION_RATE": "150"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
