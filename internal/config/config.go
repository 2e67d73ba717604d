package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported LLM providers
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
)

// Supported store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Store   Store   `mapstructure:"store"`
	Cache   Cache   `mapstructure:"cache"`
	Server  Server  `mapstructure:"server"`
	Breaker Breaker `mapstructure:"breaker"`
	Logging Logging `mapstructure:"logging"`
	PostHog PostHog `mapstructure:"posthog"`
}

// App holds general application configuration
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds LLM configuration
type AI struct {
	Provider    string           `mapstructure:"provider"`    // openrouter, gemini or anthropic
	Temperature *float64         `mapstructure:"temperature"` // sampling temperature; nil means the built-in default
	MaxTokens   int              `mapstructure:"max_tokens"`  // default completion budget
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Gemini      GeminiConfig     `mapstructure:"gemini"`
	Anthropic   AnthropicConfig  `mapstructure:"anthropic"`
}

// OpenRouterConfig holds OpenRouter (OpenAI-compatible) configuration
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// AnthropicConfig holds Anthropic configuration
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Store holds document store configuration
type Store struct {
	Backend  string         `mapstructure:"backend"` // memory, sqlite, postgres or redis
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SQLiteConfig holds the local sqlite store configuration
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig holds the postgres store configuration
type PostgresConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds the redis store configuration
type RedisConfig struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Cache holds insight cache configuration
type Cache struct {
	SingleFlight bool `mapstructure:"single_flight"` // collapse concurrent regenerations per key
}

// Server holds HTTP server configuration
type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	RequestTimeout  string   `mapstructure:"request_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

// Breaker holds circuit breaker configuration for LLM calls
type Breaker struct {
	Enabled          bool   `mapstructure:"enabled"`
	MaxRequests      uint32 `mapstructure:"max_requests"`      // requests allowed while half-open
	Interval         string `mapstructure:"interval"`          // closed-state counter reset period
	Timeout          string `mapstructure:"timeout"`           // open-state duration
	FailureThreshold uint32 `mapstructure:"failure_threshold"` // consecutive failures that trip
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PostHog holds product analytics configuration
type PostHog struct {
	APIKey string `mapstructure:"api_key"`
	Host   string `mapstructure:"host"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".startiq")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".startiq")

	viper.SetDefault("ai.provider", ProviderOpenRouter)
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.max_tokens", 1500)
	viper.SetDefault("ai.openrouter.model", "google/gemma-3-27b-it:free")
	viper.SetDefault("ai.openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("ai.openrouter.timeout", "60s")
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.anthropic.model", "claude-haiku-4-5")
	viper.SetDefault("ai.anthropic.timeout", "60s")

	viper.SetDefault("store.backend", BackendSQLite)
	viper.SetDefault("store.sqlite.path", "startiq.db")
	viper.SetDefault("store.postgres.max_open_conns", 25)
	viper.SetDefault("store.postgres.max_idle_conns", 5)
	viper.SetDefault("store.postgres.conn_max_lifetime", "5m")
	viper.SetDefault("store.redis.key_prefix", "startiq")

	viper.SetDefault("cache.single_flight", true)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5001)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "180s")
	viper.SetDefault("server.request_timeout", "170s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.cors_origins", []string{"*"})

	viper.SetDefault("breaker.enabled", true)
	viper.SetDefault("breaker.max_requests", 1)
	viper.SetDefault("breaker.interval", "60s")
	viper.SetDefault("breaker.timeout", "30s")
	viper.SetDefault("breaker.failure_threshold", 5)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("posthog.host", "https://app.posthog.com")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.provider", []string{
		"LLM_PROVIDER",
		"STARTIQ_LLM_PROVIDER",
	})

	bindEnvKeys("ai.openrouter.api_key", []string{
		"OPENROUTER_API_KEY",
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.openrouter.model", []string{
		"OPENROUTER_MODEL",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.anthropic.api_key", []string{
		"ANTHROPIC_API_KEY",
		"CLAUDE_API_KEY",
	})

	bindEnvKeys("store.backend", []string{
		"STORE_BACKEND",
		"STARTIQ_STORE",
	})

	bindEnvKeys("store.postgres.dsn", []string{
		"DATABASE_URL",
		"POSTGRES_DSN",
	})

	bindEnvKeys("store.redis.url", []string{
		"REDIS_URL",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("posthog.api_key", []string{
		"POSTHOG_API_KEY",
	})

	bindEnvKeys("posthog.host", []string{
		"POSTHOG_HOST",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"STARTIQ_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Store.SQLite.Path != "" {
		config.Store.SQLite.Path = expandPath(config.Store.SQLite.Path)
		// Relative sqlite paths live under the data directory.
		if !filepath.IsAbs(config.Store.SQLite.Path) && config.App.DataDir != "" {
			config.Store.SQLite.Path = filepath.Join(config.App.DataDir, config.Store.SQLite.Path)
		}
	}

	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Store.Backend = strings.ToLower(strings.TrimSpace(config.Store.Backend))
	config.Logging.Level = strings.ToLower(config.Logging.Level)
	config.Logging.Format = strings.ToLower(config.Logging.Format)

	durations := map[string]string{
		"ai.openrouter.timeout":            config.AI.OpenRouter.Timeout,
		"ai.gemini.timeout":                config.AI.Gemini.Timeout,
		"ai.anthropic.timeout":             config.AI.Anthropic.Timeout,
		"store.postgres.conn_max_lifetime": config.Store.Postgres.ConnMaxLifetime,
		"server.read_timeout":              config.Server.ReadTimeout,
		"server.write_timeout":             config.Server.WriteTimeout,
		"server.request_timeout":           config.Server.RequestTimeout,
		"server.shutdown_timeout":          config.Server.ShutdownTimeout,
		"breaker.interval":                 config.Breaker.Interval,
		"breaker.timeout":                  config.Breaker.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case ProviderOpenRouter:
		if !isValidAPIKey(config.AI.OpenRouter.APIKey) {
			errors = append(errors, "OpenRouter API key is required. Set OPENROUTER_API_KEY environment variable or ai.openrouter.api_key in config file")
		}
	case ProviderGemini:
		if !isValidAPIKey(config.AI.Gemini.APIKey) {
			errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
		}
	case ProviderAnthropic:
		if !isValidAPIKey(config.AI.Anthropic.APIKey) {
			errors = append(errors, "Anthropic API key is required. Set ANTHROPIC_API_KEY environment variable or ai.anthropic.api_key in config file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown LLM provider: %s. Supported: openrouter, gemini, anthropic", config.AI.Provider))
	}

	if config.AI.MaxTokens <= 0 {
		errors = append(errors, "ai.max_tokens must be positive")
	}
	if t := config.AI.Temperature; t != nil && (*t < 0 || *t > 2) {
		errors = append(errors, "ai.temperature must be between 0 and 2")
	}

	switch config.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if config.Store.SQLite.Path == "" {
			errors = append(errors, "store.sqlite.path is required for the sqlite backend")
		}
	case BackendPostgres:
		if config.Store.Postgres.DSN == "" {
			errors = append(errors, "Postgres DSN is required. Set DATABASE_URL environment variable or store.postgres.dsn in config file")
		}
	case BackendRedis:
		if config.Store.Redis.URL == "" {
			errors = append(errors, "Redis URL is required. Set REDIS_URL environment variable or store.redis.url in config file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown store backend: %s. Supported: memory, sqlite, postgres, redis", config.Store.Backend))
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("Invalid server port: %d", config.Server.Port))
	}

	switch config.Logging.Format {
	case "json", "text":
	default:
		errors = append(errors, fmt.Sprintf("Unknown logging format: %s. Supported: json, text", config.Logging.Format))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Float returns a pointer to v, for optional numeric settings.
func Float(v float64) *float64 { return &v }

// Convenience getters for commonly used configuration values
func GetApp() App         { return Get().App }
func GetAI() AI           { return Get().AI }
func GetStore() Store     { return Get().Store }
func GetCache() Cache     { return Get().Cache }
func GetServer() Server   { return Get().Server }
func GetBreaker() Breaker { return Get().Breaker }
func GetLogging() Logging { return Get().Logging }
func GetPostHog() PostHog { return Get().PostHog }
func IsDebugMode() bool   { return Get().App.Debug }

// ParseDuration parses a validated duration string, returning fallback when
// it is empty.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-openrouter-key", "your-gemini-key", "your-anthropic-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
