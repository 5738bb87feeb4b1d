package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "promptforge.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/promptforge"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/promptforge/config.yaml)
// 3. Project config (promptforge.yaml in current or parent directories)
// 4. Environment variables (PROMPTFORGE_*)
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	config.Merge(fromEnv())

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile loads an explicit config path merged over defaults and env,
// bypassing the user/project search. Used by the --config flag.
func (l *Loader) LoadFile(path string) (*Config, error) {
	config := DefaultConfig()

	fileConfig, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	config.Merge(fileConfig)
	config.Merge(fromEnv())

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// fromEnv builds a sparse Config from PROMPTFORGE_* environment variables.
func fromEnv() *Config {
	c := &Config{}
	c.Server.Addr = os.Getenv("PROMPTFORGE_ADDR")
	c.Model.Provider = os.Getenv("PROMPTFORGE_MODEL_PROVIDER")
	c.Model.Endpoint = os.Getenv("PROMPTFORGE_MODEL_ENDPOINT")
	c.Model.Name = os.Getenv("PROMPTFORGE_MODEL_NAME")
	if v := os.Getenv("PROMPTFORGE_MODEL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Model.Timeout = d
		}
	}
	c.Salesforce.APIVersion = os.Getenv("PROMPTFORGE_SF_API_VERSION")
	c.Recovery.Dir = os.Getenv("PROMPTFORGE_RECOVERY_DIR")
	c.Sessions.Backend = os.Getenv("PROMPTFORGE_SESSIONS_BACKEND")
	c.Sessions.NATSURL = os.Getenv("PROMPTFORGE_NATS_URL")
	c.Sessions.Bucket = os.Getenv("PROMPTFORGE_SESSIONS_BUCKET")
	return c
}

// EnsureUserConfig creates the user config file with defaults if it doesn't
// exist.
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	if _, err := os.Stat(userConfigPath); err == nil {
		return nil
	}

	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file.
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for promptforge.yaml in current and parent
// directories.
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
