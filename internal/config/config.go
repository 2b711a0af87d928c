// Package config holds the runtime configuration: a YAML file overlaid by
// CIB_* environment variables.
package config

import "time"

// EnvPrefix is the prefix of every environment override, e.g. CIB_DATA_PATH
const EnvPrefix = "CIB"

// Config is the root configuration
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Responder ResponderConfig `yaml:"responder"`
	Session   SessionConfig   `yaml:"session"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// DataConfig locates the customer table
type DataConfig struct {
	Path              string `yaml:"path"`
	FallbackSynthetic bool   `yaml:"fallback_synthetic" split_words:"true"`
}

// ResponderConfig tunes the rule-based responder
type ResponderConfig struct {
	TopCategories int      `yaml:"top_categories" split_words:"true"`
	FemaleValues  []string `yaml:"female_values" split_words:"true"`
	MaleValues    []string `yaml:"male_values" split_words:"true"`
}

// SessionConfig selects where conversation memory lives
type SessionConfig struct {
	Backend    string        `yaml:"backend"` // memory, redis
	RedisURL   string        `yaml:"redis_url" split_words:"true"`
	TTL        time.Duration `yaml:"ttl"`
	MaxHistory int           `yaml:"max_history" split_words:"true"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // debug, release, test
}

// LogConfig configures the global zerolog logger
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json, console
	Output     string `yaml:"output"` // stdout, stderr, file
	FilePath   string `yaml:"file_path" split_words:"true"`
	TimeFormat string `yaml:"time_format" split_words:"true"`
}

// Default returns the configuration used when neither the file nor the
// environment sets a value
func Default() Config {
	return Config{
		Data: DataConfig{
			Path: "data/ecommerce_customer_clusters.csv",
		},
		Responder: ResponderConfig{
			TopCategories: 5,
			FemaleValues:  []string{"female", "f"},
			MaleValues:    []string{"male", "m"},
		},
		Session: SessionConfig{
			Backend:    "memory",
			RedisURL:   "redis://localhost:6379/0",
			TTL:        40 * time.Minute,
			MaxHistory: 40,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			FilePath:   "logs/chatbot.log",
			TimeFormat: "rfc3339",
		},
	}
}
