// Package config loads the fastctl-search configuration from YAML files with
// environment variable expansion and env fallbacks for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the fastctl-search configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Qdrant  QdrantConfig  `yaml:"qdrant"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for the HTTP surface.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// QdrantConfig holds vector store connection settings.
type QdrantConfig struct {
	URL        string `yaml:"url"`     // e.g. https://cluster-id.qdrant.cloud:6334
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// OpenAIConfig holds language model and embedding provider settings.
type OpenAIConfig struct {
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"` // empty: api.openai.com
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	ExtractionModel     string `yaml:"extraction_model"`
}

// CacheConfig holds the optional Redis embedding cache settings.
// An empty addr disables the cache.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	TTLHours      int    `yaml:"ttl_hours"`
}

// SearchConfig holds result bounds.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// IngestConfig holds catalog indexing settings.
type IngestConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// Load reads configuration from config/<env>.yaml if present, expands ${VAR}
// references, applies env fallbacks and defaults, and validates the result.
// A missing config file is not an error: env variables alone can configure
// the tool, the way the original deployment did.
func Load(env string) (Config, error) {
	var cfg Config

	configPath := filepath.Join("config", fmt.Sprintf("%s.yaml", env))
	data, err := os.ReadFile(filepath.Clean(configPath))
	switch {
	case err == nil:
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// env-only configuration
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	cfg.applyEnvFallbacks()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// applyEnvFallbacks fills secrets and endpoints from well-known environment
// variables when the config file left them empty.
func (c *Config) applyEnvFallbacks() {
	if c.Qdrant.URL == "" {
		c.Qdrant.URL = os.Getenv("QDRANT_URL")
	}
	if c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = os.Getenv("REDIS_ADDR")
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Qdrant.Collection == "" {
		c.Qdrant.Collection = "real_estate"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.EmbeddingDimensions <= 0 {
		c.OpenAI.EmbeddingDimensions = 1536
	}
	if c.OpenAI.ExtractionModel == "" {
		c.OpenAI.ExtractionModel = "gpt-4o"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 32
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Qdrant.URL == "" {
		return fmt.Errorf("qdrant.url is required (or set QDRANT_URL)")
	}
	if strings.TrimSpace(c.Qdrant.Collection) == "" {
		return fmt.Errorf("qdrant.collection is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required (or set OPENAI_API_KEY)")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit,
		)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
