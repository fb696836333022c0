// Package config provides configuration management for the planline server.
// It handles loading and parsing the YAML configuration file and provides
// structured access to application settings: listen address, events file
// path, provider endpoint and model, polling interval, CORS origins, and
// logging options. The configuration is constructed once at startup and
// passed explicitly into the components that need it; there is no ambient
// process-wide config state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the address the HTTP server binds to.
	Host string `yaml:"host" json:"host"`

	// Port is the TCP port the HTTP server listens on.
	Port int `yaml:"port" json:"port"`

	// EventsFile is the path of the JSON document holding the event
	// collection. Absence of the file is equivalent to an empty collection.
	EventsFile string `yaml:"events-file" json:"events-file"`

	// Provider configures the language-model backend.
	Provider ProviderConfig `yaml:"provider" json:"provider"`

	// PollIntervalSeconds is the reconciler refresh cadence. <= 0 uses the
	// default of 5 seconds.
	PollIntervalSeconds int `yaml:"poll-interval-seconds,omitempty" json:"poll-interval-seconds,omitempty"`

	// RequestTimeoutSeconds bounds a single chat round-trip to the provider.
	// <= 0 uses the default of 30 seconds.
	RequestTimeoutSeconds int `yaml:"request-timeout-seconds,omitempty" json:"request-timeout-seconds,omitempty"`

	// CORS holds cross-origin settings for the HTTP surface.
	CORS CORSConfig `yaml:"cors,omitempty" json:"cors,omitempty"`

	// Logging holds log output settings.
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// ProviderConfig describes the OpenAI-compatible chat-completions backend.
type ProviderConfig struct {
	// BaseURL is the provider endpoint root. Defaults to the OpenAI API.
	BaseURL string `yaml:"base-url,omitempty" json:"base-url,omitempty"`

	// Model is the chat model identifier sent upstream.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// APIKey authenticates against the provider. Usually supplied via the
	// OPENAI_API_KEY environment variable rather than the config file.
	APIKey string `yaml:"api-key,omitempty" json:"-"`
}

// CORSConfig holds cross-origin request settings.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API. Empty allows any.
	AllowOrigins []string `yaml:"allow-origins,omitempty" json:"allow-origins,omitempty"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// File, when set, sends logs to a size-rotated file instead of stderr.
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	// MaxSizeMB caps a single log file before rotation. <= 0 means 20.
	MaxSizeMB int `yaml:"max-size-mb,omitempty" json:"max-size-mb,omitempty"`

	// MaxBackups is the number of rotated files to keep. <= 0 means 3.
	MaxBackups int `yaml:"max-backups,omitempty" json:"max-backups,omitempty"`
}

const (
	defaultPort           = 3001
	defaultEventsFile     = "data/events.json"
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultModel          = "gpt-4o-mini"
	defaultPollInterval   = 5 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

// LoadConfig reads and parses the YAML configuration file at path, applying
// defaults for unset fields. A missing file is not an error: the defaults
// stand alone so the server can run from environment variables only.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.EventsFile == "" {
		c.EventsFile = filepath.FromSlash(defaultEventsFile)
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = defaultBaseURL
	}
	if c.Provider.Model == "" {
		c.Provider.Model = defaultModel
	}
}

// PollInterval returns the reconciler refresh cadence.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return defaultPollInterval
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RequestTimeout returns the per-turn provider deadline.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
