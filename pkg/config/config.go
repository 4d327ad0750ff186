package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ProviderEnv selects the active provider, overriding the file.
const ProviderEnv = "LECTIO_AI_PROVIDER"

// Config holds all Lectio configuration.
type Config struct {
	Listen    string           `yaml:"listen" validate:"required"`
	Log       LogConfig        `yaml:"log"`
	AI        AIConfig         `yaml:"ai"`
	Providers []ProviderConfig `yaml:"providers" validate:"dive"`
	Cache     CacheConfig      `yaml:"cache"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// AIConfig selects the provider used for generation.
type AIConfig struct {
	// Provider is matched exactly against registered provider names.
	// Unknown names fall back to OpenAI.
	Provider string        `yaml:"provider" validate:"required"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
}

// ProviderConfig holds credentials and optional overrides for one provider.
// An empty APIKey means the provider is not configured.
type ProviderConfig struct {
	Name     string `yaml:"name" validate:"required"`
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
	Model    string `yaml:"model"`
}

// CacheConfig controls the plan cache.
type CacheConfig struct {
	Backend string        `yaml:"backend" validate:"oneof=memory sqlite"`
	DSN     string        `yaml:"dsn"`
	TTL     time.Duration `yaml:"ttl" validate:"gt=0"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		AI: AIConfig{
			Provider: "OpenAI",
			Timeout:  60 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
		},
	}
}

// Load reads a YAML config file and expands environment variables. An empty
// path yields the defaults. Environment overrides are applied and the result
// validated in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// KeyEnv returns the environment variable consulted for a provider's API key,
// e.g. OPENAI_API_KEY.
func KeyEnv(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

func (c *Config) applyEnv() {
	if name := os.Getenv(ProviderEnv); name != "" {
		c.AI.Provider = name
	}

	for i := range c.Providers {
		if c.Providers[i].APIKey == "" {
			c.Providers[i].APIKey = os.Getenv(KeyEnv(c.Providers[i].Name))
		}
	}

	if _, ok := c.Provider(c.AI.Provider); !ok {
		if key := os.Getenv(KeyEnv(c.AI.Provider)); key != "" {
			c.Providers = append(c.Providers, ProviderConfig{Name: c.AI.Provider, APIKey: key})
		}
	}
}

// Provider returns the settings configured for name.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// ActiveProvider returns the selected provider's settings. The APIKey is
// empty when nothing is configured for it.
func (c *Config) ActiveProvider() ProviderConfig {
	p, ok := c.Provider(c.AI.Provider)
	if !ok {
		return ProviderConfig{Name: c.AI.Provider}
	}
	return p
}
