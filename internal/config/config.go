// Package config loads and persists trialsight configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all trialsight configuration.
type Config struct {
	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Trial catalog source
	Catalog CatalogConfig `yaml:"catalog"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the generation client.
type LLMConfig struct {
	APIKey    string `yaml:"api_key"`
	FastModel string `yaml:"fast_model"` // low-latency tier
	DeepModel string `yaml:"deep_model"` // deep-reasoning tier
	Timeout   string `yaml:"timeout"`
}

// CatalogConfig points at an optional YAML file of trial records. When empty,
// the built-in catalog is used.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			FastModel: "gemini-2.5-flash-lite",
			DeepModel: "gemini-3-pro-preview",
			Timeout:   "120s",
		},
		Logging: LoggingConfig{
			Debug: false,
			Dir:   "logs",
			Level: "info",
		},
	}
}

// Load reads config from path, falling back to defaults when the file does
// not exist. Environment variables override file values afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the config file, so keys
// never have to be written to disk.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("TRIALSIGHT_FAST_MODEL"); v != "" {
		c.LLM.FastModel = v
	}
	if v := os.Getenv("TRIALSIGHT_DEEP_MODEL"); v != "" {
		c.LLM.DeepModel = v
	}
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LLMTimeout parses the configured request timeout, defaulting to 120s on
// empty or malformed values.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}
