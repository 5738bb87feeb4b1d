// Package config provides configuration loading and management for
// promptforge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete promptforge configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Model      ModelConfig      `yaml:"model"`
	Salesforce SalesforceConfig `yaml:"salesforce"`
	Recovery   RecoveryConfig   `yaml:"recovery"`
	Sessions   SessionsConfig   `yaml:"sessions"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address (default: ":8000")
	Addr string `yaml:"addr"`
}

// ModelConfig configures the generative model settings.
type ModelConfig struct {
	// Provider is the registered provider name ("anthropic" or "openai")
	Provider string `yaml:"provider"`
	// Endpoint overrides the provider's API host (empty = provider default)
	Endpoint string `yaml:"endpoint"`
	// Name is the provider-specific model identifier
	Name string `yaml:"name"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
}

// SalesforceConfig configures org access.
type SalesforceConfig struct {
	// APIVersion is the REST API version (e.g. "59.0")
	APIVersion string `yaml:"api_version"`
	// LoginHost overrides the SOAP login host (tests only)
	LoginHost string `yaml:"login_host"`
}

// RecoveryConfig configures raw-response recovery artifacts.
type RecoveryConfig struct {
	// Dir is where unparseable model responses are saved (empty = disabled)
	Dir string `yaml:"dir"`
}

// SessionsConfig configures the session store backend.
type SessionsConfig struct {
	// Backend selects the store: "memory" (default) or "nats"
	Backend string `yaml:"backend"`
	// NATSURL is the NATS server URL for the nats backend
	NATSURL string `yaml:"nats_url"`
	// Bucket is the JetStream KV bucket name (empty = default)
	Bucket string `yaml:"bucket"`
}

// Session store backends.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Model: ModelConfig{
			Provider: "anthropic",
			Name:     "claude-3-5-sonnet-20241022",
			Timeout:  5 * time.Minute,
		},
		Salesforce: SalesforceConfig{
			APIVersion: "59.0",
		},
		Recovery: RecoveryConfig{
			Dir: "recovery",
		},
		Sessions: SessionsConfig{
			Backend: BackendMemory,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Salesforce.APIVersion == "" {
		return fmt.Errorf("salesforce.api_version is required")
	}
	switch c.Sessions.Backend {
	case BackendMemory:
	case BackendNATS:
		if c.Sessions.NATSURL == "" {
			return fmt.Errorf("sessions.nats_url is required for the nats backend")
		}
	default:
		return fmt.Errorf("sessions.backend must be %q or %q", BackendMemory, BackendNATS)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}

	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	if other.Salesforce.APIVersion != "" {
		c.Salesforce.APIVersion = other.Salesforce.APIVersion
	}
	if other.Salesforce.LoginHost != "" {
		c.Salesforce.LoginHost = other.Salesforce.LoginHost
	}

	if other.Recovery.Dir != "" {
		c.Recovery.Dir = other.Recovery.Dir
	}

	if other.Sessions.Backend != "" {
		c.Sessions.Backend = other.Sessions.Backend
	}
	if other.Sessions.NATSURL != "" {
		c.Sessions.NATSURL = other.Sessions.NATSURL
	}
	if other.Sessions.Bucket != "" {
		c.Sessions.Bucket = other.Sessions.Bucket
	}
}
