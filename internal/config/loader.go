package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// LoadConfig starts from Default, overlays the YAML file at path (skipped
// when path is empty) and then CIB_* environment variables.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings no component can run with
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid session backend %q (want memory or redis)", c.Session.Backend)
	}
	if c.Session.Backend == "redis" && c.Session.RedisURL == "" {
		return fmt.Errorf("session backend redis requires session.redis_url")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.MaxHistory <= 0 {
		return fmt.Errorf("session max_history must be positive, got %d", c.Session.MaxHistory)
	}
	if c.Responder.TopCategories <= 0 {
		return fmt.Errorf("responder top_categories must be positive, got %d", c.Responder.TopCategories)
	}
	if len(c.Responder.FemaleValues) == 0 || len(c.Responder.MaleValues) == 0 {
		return fmt.Errorf("responder gender value lists must not be empty")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}
	return nil
}
