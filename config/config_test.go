package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values", func(t *testing.T) {
		os.Clearenv()

		cfg := Load()

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 10*time.Minute, cfg.Server.IdempotencyTTL)
		assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
		assert.Equal(t, 1000, cfg.Session.Capacity)
		assert.Equal(t, []string{"AV31", "AV32", "AV33", "AV34", "AV35"}, cfg.Annex.OpeningSections)
		assert.Equal(t, "AV36", cfg.Annex.ClosingSection)
		assert.Equal(t, "QuoteLineItem", cfg.FieldSet.Object)
		assert.Empty(t, cfg.FieldSet.Path)
		assert.False(t, cfg.Auth.Enabled)
	})

	t.Run("loads values from environment", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("PORT", "9090")
		_ = os.Setenv("SESSION_IDLE_TTL", "5m")
		_ = os.Setenv("SESSION_CAPACITY", "50")
		_ = os.Setenv("ANNEX_OPENING_SECTIONS", "A1,A2")
		_ = os.Setenv("ANNEX_CLOSING_SECTION", "Z9")
		_ = os.Setenv("ANNEX_DOWNLOAD_TIMEOUT", "3s")
		_ = os.Setenv("AUTH_ENABLED", "true")
		_ = os.Setenv("API_KEYS", "key1,key2")
		defer os.Clearenv()

		cfg := Load()

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 5*time.Minute, cfg.Session.IdleTTL)
		assert.Equal(t, 50, cfg.Session.Capacity)
		assert.Equal(t, []string{"A1", "A2"}, cfg.Annex.OpeningSections)
		assert.Equal(t, "Z9", cfg.Annex.ClosingSection)
		assert.Equal(t, 3*time.Second, cfg.Annex.DownloadTimeout)
		assert.True(t, cfg.Auth.Enabled)
		assert.True(t, cfg.Auth.APIKeys["key1"])
		assert.True(t, cfg.Auth.APIKeys["key2"])
	})

	t.Run("handles invalid values gracefully", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("SESSION_CAPACITY", "invalid")
		_ = os.Setenv("AUTH_ENABLED", "invalid")
		_ = os.Setenv("SESSION_IDLE_TTL", "invalid")
		defer os.Clearenv()

		cfg := Load()

		assert.Equal(t, 1000, cfg.Session.Capacity)
		assert.False(t, cfg.Auth.Enabled)
		assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	})

	t.Run("blank opening sections fall back to defaults", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("ANNEX_OPENING_SECTIONS", " , ")
		defer os.Clearenv()

		cfg := Load()

		assert.Len(t, cfg.Annex.OpeningSections, 5)
	})

	t.Run("parses API keys with whitespace", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("API_KEYS", " key1 , key2 , key3 ")
		defer os.Clearenv()

		cfg := Load()

		assert.True(t, cfg.Auth.APIKeys["key1"])
		assert.True(t, cfg.Auth.APIKeys["key2"])
		assert.True(t, cfg.Auth.APIKeys["key3"])
	})

	t.Run("returns nil for empty API keys", func(t *testing.T) {
		os.Clearenv()

		cfg := Load()

		assert.Nil(t, cfg.Auth.APIKeys)
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("file values do not override environment", func(t *testing.T) {
		os.Clearenv()
		defer os.Clearenv()
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PORT=7070\nANNEX_CLOSING_SECTION=END\n"), 0o600))
		_ = os.Setenv("PORT", "9090")

		require.NoError(t, LoadDotEnv(path))
		cfg := Load()

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "END", cfg.Annex.ClosingSection)
	})
}

func TestLoad_ServerAndLog(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()
	_ = os.Setenv("SERVER_WRITE_TIMEOUT", "90s")
	_ = os.Setenv("LOG_LEVEL", "debug")
	_ = os.Setenv("LOG_PRETTY", "true")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 300, cfg.Server.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.Server.RateLimitWindow)
	assert.Equal(t, LogConfig{Level: "debug", Pretty: true}, cfg.Log)
	assert.True(t, cfg.Database.Enabled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = "http" },
			wantErr: []string{`PORT "http"`},
		},
		{
			name:    "auth without keys",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: []string{"API_KEYS"},
		},
		{
			name: "download outlives the response",
			mutate: func(c *Config) {
				c.Annex.DownloadTimeout = 3 * time.Minute
			},
			wantErr: []string{"shorter than SERVER_WRITE_TIMEOUT"},
		},
		{
			name:    "request deadline past the write timeout",
			mutate:  func(c *Config) { c.Server.RequestTimeout = 5 * time.Minute },
			wantErr: []string{"REQUEST_TIMEOUT"},
		},
		{
			name:   "limiting and deadline disabled",
			mutate: func(c *Config) { c.Server.RequestTimeout = 0; c.Server.RateLimitRequests = 0; c.Server.RateLimitWindow = 0 },
		},
		{
			name:    "limiting without a window",
			mutate:  func(c *Config) { c.Server.RateLimitWindow = 0 },
			wantErr: []string{"RATE_LIMIT_WINDOW"},
		},
		{
			name: "several problems at once",
			mutate: func(c *Config) {
				c.Session.Capacity = 0
				c.Session.IdleTTL = 0
				c.Database.CircuitBreakerFailureThreshold = 0
			},
			wantErr: []string{"SESSION_CAPACITY", "SESSION_IDLE_TTL", "thresholds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			cfg := Load()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
