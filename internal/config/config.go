package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/garden/internal/domain/search/relevance"
	"github.com/kailas-cloud/garden/internal/domain/search/request"
)

// Storage drivers.
const (
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the garden API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
	Storage    StorageConfig    `yaml:"storage"`
	Completion CompletionConfig `yaml:"completion"`
	Search     SearchConfig     `yaml:"search"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig lists browser origins allowed to call the API. Empty disables CORS.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig selects and addresses the content store.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, postgres, sqlite (default: valkey)
	Addrs            []string `yaml:"addrs"`  // valkey, redis
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"` // postgres URL or sqlite file path
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IsKeyValue reports whether the driver is backed by rueidis.
func (s StorageConfig) IsKeyValue() bool {
	return s.Driver == DriverValkey || s.Driver == DriverRedis
}

// CompletionConfig holds the answer-generation providers.
type CompletionConfig struct {
	Primary    PrimaryConfig  `yaml:"primary"`
	Fallback   FallbackConfig `yaml:"fallback"`
	TimeoutSec int            `yaml:"timeout_sec"`
	Budget     BudgetConfig   `yaml:"budget"`
}

// PrimaryConfig is the keyed provider. An empty api_key disables it.
type PrimaryConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// FallbackConfig is the keyless provider. An empty base_url disables it.
type FallbackConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// BudgetConfig holds token budget settings for the primary provider.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// SearchConfig tunes the search pipeline.
type SearchConfig struct {
	MaxContextItems   int               `yaml:"max_context_items"`
	MaxCharsPerItem   int               `yaml:"max_chars_per_item"`
	DefaultLimit      int               `yaml:"default_limit"`
	FallbackThreshold float64           `yaml:"fallback_threshold"`
	Weights           relevance.Weights `yaml:"weights"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 45
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverValkey
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 15
	}
	if c.Completion.Budget.Action == "" {
		c.Completion.Budget.Action = "warn"
	}
	if c.Search.MaxContextItems <= 0 {
		c.Search.MaxContextItems = 30
	}
	if c.Search.MaxCharsPerItem <= 0 {
		c.Search.MaxCharsPerItem = 800
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = request.DefaultLimit
	}
	if c.Search.FallbackThreshold <= 0 {
		c.Search.FallbackThreshold = 0.1
	}
	if c.Search.Weights == (relevance.Weights{}) {
		c.Search.Weights = relevance.DefaultWeights()
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", c.Storage.Driver)
		}
	case DriverPostgres, DriverSQLite:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be one of valkey, redis, postgres, sqlite, got %q", c.Storage.Driver)
	}
	// A request may wait on both providers in turn before the local fallback is written.
	if c.HTTP.WriteTimeoutSec <= 2*c.Completion.TimeoutSec {
		return fmt.Errorf("http.write_timeout_sec (%d) must exceed twice completion.timeout_sec (%d)",
			c.HTTP.WriteTimeoutSec, c.Completion.TimeoutSec)
	}
	switch c.Completion.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf(
			"completion.budget.action must be \"warn\" or \"reject\", got %q",
			c.Completion.Budget.Action,
		)
	}
	if c.Completion.Primary.APIKey != "" && c.Completion.Primary.Model == "" {
		return errors.New("completion.primary.model is required when api_key is set")
	}
	if c.Completion.Fallback.BaseURL != "" && c.Completion.Fallback.Model == "" {
		return errors.New("completion.fallback.model is required when base_url is set")
	}
	if c.Search.DefaultLimit > request.MaxLimit {
		return fmt.Errorf("search.default_limit must not exceed %d, got %d", request.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Search.FallbackThreshold >= 1 {
		return fmt.Errorf("search.fallback_threshold must be below 1, got %v", c.Search.FallbackThreshold)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package dirs
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
