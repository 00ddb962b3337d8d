// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Session  SessionConfig
	Annex    AnnexConfig
	FieldSet FieldSetConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	CORSOrigins    []string
	SwaggerUser    string
	SwaggerPass    string
	IdempotencyTTL time.Duration

	ReadTimeout time.Duration
	// WriteTimeout bounds the whole response, including annex assembly.
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// RequestTimeout bounds API calls other than the annex download.
	// Zero disables it.
	RequestTimeout time.Duration

	// RateLimitRequests is the per-client budget per RateLimitWindow.
	// Zero disables limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string
	Pretty bool
}

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	Enabled bool
	APIKeys map[string]bool
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	LogsTTL      time.Duration
	Enabled      bool

	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// SessionConfig holds configuration session store settings.
type SessionConfig struct {
	IdleTTL  time.Duration
	Capacity int
}

// AnnexConfig holds annex document pipeline settings.
type AnnexConfig struct {
	OpeningSections  []string
	ClosingSection   string
	LobbySection     string
	FinishPrefix     string
	DownloadTimeout  time.Duration
	TemplateCacheTTL time.Duration
	Title            string
}

// FieldSetConfig locates the field-set describing editable quote line columns.
// An empty Path selects the built-in field set.
type FieldSetConfig struct {
	Path   string
	Object string
	Name   string
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already present in the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			CORSOrigins:       parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
			SwaggerUser:       getEnv("SWAGGER_USER", ""),
			SwaggerPass:       getEnv("SWAGGER_PASS", ""),
			IdempotencyTTL:    getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 2*time.Minute),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 300),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Auth: AuthConfig{
			Enabled: getEnvBool("AUTH_ENABLED", false),
			APIKeys: parseAPIKeys(os.Getenv("API_KEYS")),
		},
		Database: DatabaseConfig{
			URI:                            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   getEnv("MONGODB_DATABASE", "quote_configurator"),
			LogsTTL:                        getEnvDuration("MONGODB_LOGS_TTL", 30*24*time.Hour),
			Enabled:                        getEnvBool("MONGODB_ENABLED", true),
			CircuitBreakerFailureThreshold: getEnvInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: getEnvInt("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			IdleTTL:  getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
			Capacity: getEnvInt("SESSION_CAPACITY", 1000),
		},
		Annex: AnnexConfig{
			OpeningSections:  parseList(os.Getenv("ANNEX_OPENING_SECTIONS"), []string{"AV31", "AV32", "AV33", "AV34", "AV35"}),
			ClosingSection:   getEnv("ANNEX_CLOSING_SECTION", "AV36"),
			LobbySection:     getEnv("ANNEX_LOBBY_SECTION", "LOBBY"),
			FinishPrefix:     getEnv("ANNEX_FINISH_PREFIX", "FINISH_"),
			DownloadTimeout:  getEnvDuration("ANNEX_DOWNLOAD_TIMEOUT", 15*time.Second),
			TemplateCacheTTL: getEnvDuration("ANNEX_TEMPLATE_CACHE_TTL", 10*time.Minute),
			Title:            getEnv("ANNEX_TITLE", "Anexa Oferta"),
		},
		FieldSet: FieldSetConfig{
			Path:   getEnv("FIELDSET_PATH", ""),
			Object: getEnv("FIELDSET_OBJECT", "QuoteLineItem"),
			Name:   getEnv("FIELDSET_NAME", "ProductWizard"),
		},
	}
}

// Validate reports every setting that would keep the service from starting.
func (c Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Server.Port))
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		errs = append(errs, errors.New("AUTH_ENABLED requires at least one API_KEYS entry"))
	}
	if c.Database.Enabled && c.Database.URI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.Database.CircuitBreakerFailureThreshold < 1 || c.Database.CircuitBreakerSuccessThreshold < 1 {
		errs = append(errs, errors.New("circuit breaker thresholds must be at least 1"))
	}
	if c.Session.Capacity < 1 {
		errs = append(errs, errors.New("SESSION_CAPACITY must be at least 1"))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"SESSION_IDLE_TTL", c.Session.IdleTTL},
		{"ANNEX_DOWNLOAD_TIMEOUT", c.Annex.DownloadTimeout},
		{"SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout},
		{"CIRCUIT_BREAKER_TIMEOUT", c.Database.CircuitBreakerTimeout},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", d.name))
		}
	}
	if c.Server.RequestTimeout < 0 || c.Server.RequestTimeout >= c.Server.WriteTimeout {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be between zero and SERVER_WRITE_TIMEOUT"))
	}
	if c.Server.RateLimitRequests < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must not be negative"))
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive when limiting is on"))
	}
	if c.Annex.DownloadTimeout >= c.Server.WriteTimeout {
		errs = append(errs, errors.New("ANNEX_DOWNLOAD_TIMEOUT must be shorter than SERVER_WRITE_TIMEOUT"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseList(s string, defaults []string) []string {
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return defaults
	}
	return result
}

func parseAPIKeys(s string) map[string]bool {
	if s == "" {
		return nil
	}
	keys := strings.Split(s, ",")
	result := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			result[k] = true
		}
	}
	return result
}

// parseCORSOrigins always keeps the local development origins.
func parseCORSOrigins(s string) []string {
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
