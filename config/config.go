package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/upb/llm-cascade/providers"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Providers     ProvidersConfig
	Cascade       CascadeConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ProvidersConfig holds the credential map keyed by provider name. Empty
// entries mark a provider as unconfigured; the cascade skips those.
type ProvidersConfig struct {
	Keys map[string]string
}

// CascadeConfig holds retry and timeout tuning for the provider cascade
type CascadeConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxJitter      time.Duration
	RequestTimeout time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// envKeys maps provider name to the environment variable carrying its API key.
var envKeys = map[string]string{
	"gemini":     "GEMINI_API_KEY",
	"groq":       "GROQ_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"together":   "TOGETHER_API_KEY",
	"mistral":    "MISTRAL_API_KEY",
	"deepseek":   "DEEPSEEK_API_KEY",
	"openai":     "OPENAI_API_KEY",
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	keys := make(map[string]string, len(envKeys))
	for name, envKey := range envKeys {
		keys[name] = getEnv(envKey, "")
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Providers: ProvidersConfig{
			Keys: keys,
		},
		Cascade: CascadeConfig{
			MaxAttempts:    getEnvAsInt("CASCADE_MAX_ATTEMPTS", 3),
			InitialBackoff: getEnvAsDuration("CASCADE_INITIAL_BACKOFF", 2*time.Second),
			MaxJitter:      getEnvAsDuration("CASCADE_MAX_JITTER", time.Second),
			RequestTimeout: getEnvAsDuration("CASCADE_REQUEST_TIMEOUT", 60*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}

	if c.Cascade.MaxAttempts < 1 {
		return fmt.Errorf("cascade max attempts must be at least 1")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	// A gateway with zero keys can still start in development (every call
	// fails with the aggregate error); production requires at least one.
	if c.IsProduction() && len(c.ConfiguredProviders()) == 0 {
		return fmt.Errorf("at least one provider API key must be configured in production")
	}

	return nil
}

// ConfiguredProviders returns the provider names with a non-empty key, in
// cascade priority order.
func (c *Config) ConfiguredProviders() []string {
	var out []string
	for _, name := range providers.CascadeOrder {
		if c.Providers.Keys[name] != "" {
			out = append(out, name)
		}
	}
	return out
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
