// Package config loads docstore settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viant/docstore/ingest"
)

// Environment variables that override file settings.
const (
	EnvDSN           = "DOCSTORE_DSN"
	EnvLogLevel      = "DOCSTORE_LOG_LEVEL"
	EnvEmbedderURL   = "DOCSTORE_EMBEDDER_URL"
	EnvEmbedderModel = "DOCSTORE_EMBEDDER_MODEL"
)

// StoreConfig configures the document store and its persistence.
type StoreConfig struct {
	// Dimension fixes the embedding length up front; 0 lets the first
	// insert decide.
	Dimension int `yaml:"dimension"`
	// DSN selects the repository backend; "" or "memory" disables
	// persistence.
	DSN string `yaml:"dsn"`
}

// EmbedderConfig selects and configures the text embedder.
type EmbedderConfig struct {
	Type        string `yaml:"type"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// Timeout returns TimeoutSecs as a duration.
func (e EmbedderConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// IngestConfig configures the ingest pipeline.
type IngestConfig struct {
	Paths       []string `yaml:"paths"`
	Concurrency int      `yaml:"concurrency"`
	Retries     int      `yaml:"retries"`
	BackoffMs   int      `yaml:"backoff_ms"`
}

// Backoff returns BackoffMs as a duration.
func (i IngestConfig) Backoff() time.Duration {
	return time.Duration(i.BackoffMs) * time.Millisecond
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration structure.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads path, applies defaults and environment overrides. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyDefaults(cfg *Config) {
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = "data/docstore.db"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Embedder.MaxRetries == 0 {
		cfg.Embedder.MaxRetries = 5
	}
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = ingest.DefaultConcurrency
	}
	if cfg.Ingest.Retries == 0 {
		cfg.Ingest.Retries = ingest.DefaultRetries
	}
	if cfg.Ingest.BackoffMs == 0 {
		cfg.Ingest.BackoffMs = int(ingest.DefaultBackoff / time.Millisecond)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvEmbedderURL); v != "" {
		cfg.Embedder.BaseURL = v
	}
	if v := os.Getenv(EnvEmbedderModel); v != "" {
		cfg.Embedder.Model = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Store.Dimension < 0 {
		return fmt.Errorf("config: store.dimension must be >= 0, got %d", c.Store.Dimension)
	}
	if c.Ingest.Concurrency <= 0 {
		return fmt.Errorf("config: ingest.concurrency must be > 0, got %d", c.Ingest.Concurrency)
	}
	if c.Ingest.BackoffMs < 0 {
		return fmt.Errorf("config: ingest.backoff_ms must be >= 0, got %d", c.Ingest.BackoffMs)
	}
	switch strings.ToLower(c.Embedder.Type) {
	case "openai", "ollama":
	default:
		return fmt.Errorf("config: unknown embedder type %q", c.Embedder.Type)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
