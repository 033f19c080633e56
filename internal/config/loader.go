// Package config loads the todrec YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName  = "config.yaml"
	ConfigDirName   = ".todrec"
	GlobalConfigDir = ".config/todrec"
)

// ErrNotFound is returned when no config file exists in the search path
var ErrNotFound = errors.New("no config file found")

// Loader handles configuration loading and discovery
type Loader struct {
	startDir string
	path     string
}

// NewLoader creates a new config loader starting from the given directory
func NewLoader(startDir string) *Loader {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			startDir = "."
		}
	}

	return &Loader{
		startDir: startDir,
	}
}

// NewFileLoader creates a loader bound to an explicit config file
func NewFileLoader(path string) *Loader {
	return &Loader{startDir: filepath.Dir(path), path: path}
}

// Load loads the configuration with environment variable overrides. When no
// file exists the defaults are used.
func (l *Loader) Load() (*Config, error) {
	configPath := l.path
	if configPath == "" {
		found, err := l.findConfigFile()
		switch {
		case errors.Is(err, ErrNotFound):
			return l.finish(DefaultConfig())
		case err != nil:
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		configPath = found
	}

	config, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	l.path = configPath
	return l.finish(config)
}

func (l *Loader) finish(config *Config) (*Config, error) {
	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Path returns the config file Load read, or "" when defaults were used
func (l *Loader) Path() string {
	return l.path
}

// findConfigFile searches upward from the start directory for a config file
func (l *Loader) findConfigFile() (string, error) {
	dir := l.startDir

	for {
		configPath := filepath.Join(dir, ConfigDirName, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		globalConfig := filepath.Join(homeDir, GlobalConfigDir, ConfigFileName)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", fmt.Errorf("%w (searched upward from %s)", ErrNotFound, l.startDir)
}

// LoadFile reads one YAML file on top of the defaults. Environment overrides
// are not applied.
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", configPath, err)
	}

	return config, nil
}

// applyEnvOverrides applies TODREC_* environment variables to the config
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("TODREC_SHOW_HIGHLIGHT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODREC_SHOW_HIGHLIGHT: %w", err)
		}
		config.Recorder.ShowHighlight = b
	}
	if v := os.Getenv("TODREC_CLICK_POLICY"); v != "" {
		config.Recorder.ClickPolicy = v
	}
	if v := os.Getenv("TODREC_LOG_LEVEL"); v != "" {
		config.Recorder.LogLevel = v
	}

	if v := os.Getenv("TODREC_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODREC_HEADLESS: %w", err)
		}
		config.Browser.Headless = b
	}
	if v := os.Getenv("TODREC_DEBUGGER_URL"); v != "" {
		config.Browser.DebuggerURL = v
	}
	if v := os.Getenv("TODREC_START_URL"); v != "" {
		config.Browser.StartURL = v
	}
	if v := os.Getenv("TODREC_CHROME_PATH"); v != "" {
		config.Browser.ChromePath = v
	}

	if v := os.Getenv("TODREC_OUTPUT_FORMAT"); v != "" {
		config.Output.Format = v
	}
	if v := os.Getenv("TODREC_OUTPUT_PATH"); v != "" {
		config.Output.Path = v
	}

	return nil
}

// Save saves the configuration to the specified path
func (l *Loader) Save(config *Config, configPath string) error {
	config.Meta.UpdatedAt = time.Now()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path where a config file should be created
func (l *Loader) GetConfigPath() string {
	return filepath.Join(l.startDir, ConfigDirName, ConfigFileName)
}

// IsInitialized checks if a config file exists in the project hierarchy
func (l *Loader) IsInitialized() bool {
	_, err := l.findConfigFile()
	return err == nil
}
