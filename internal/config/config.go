package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the complete todrec configuration
type Config struct {
	Recorder RecorderConfig `yaml:"recorder"`
	Browser  BrowserConfig  `yaml:"browser"`
	Output   OutputConfig   `yaml:"output"`
	Meta     MetaConfig     `yaml:"meta"`
}

// RecorderConfig holds recorder behaviour
type RecorderConfig struct {
	ShowHighlight bool   `yaml:"show_highlight"`
	ClickPolicy   string `yaml:"click_policy"` // on, off
	LogLevel      string `yaml:"log_level,omitempty"`
}

// BrowserConfig holds how Chrome is launched or attached to
type BrowserConfig struct {
	Headless     bool   `yaml:"headless"`
	DebuggerURL  string `yaml:"debugger_url,omitempty"` // attach instead of launching
	StartURL     string `yaml:"start_url"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	ChromePath   string `yaml:"chrome_path,omitempty"`
}

// OutputConfig holds where recorded actions go
type OutputConfig struct {
	Format string `yaml:"format"`         // jsonl, text
	Path   string `yaml:"path,omitempty"` // empty means stdout
}

// MetaConfig holds metadata about the configuration
type MetaConfig struct {
	Version   string    `yaml:"version"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

const (
	ClickPolicyOn  = "on"
	ClickPolicyOff = "off"
)

// DefaultConfig returns a new config with sensible defaults
func DefaultConfig() *Config {
	now := time.Now()
	return &Config{
		Recorder: RecorderConfig{
			ShowHighlight: true,
			ClickPolicy:   ClickPolicyOn,
		},
		Browser: BrowserConfig{
			StartURL:     "about:blank",
			WindowWidth:  1280,
			WindowHeight: 800,
		},
		Output: OutputConfig{
			Format: "jsonl",
		},
		Meta: MetaConfig{
			Version:   "1.0.0",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Recorder.ClickPolicy {
	case "", ClickPolicyOn, ClickPolicyOff:
	default:
		return NewValidationError("recorder.click_policy must be on or off, got: " + c.Recorder.ClickPolicy)
	}

	switch c.Output.Format {
	case "", "jsonl", "text":
	default:
		return NewValidationError("output.format must be jsonl or text, got: " + c.Output.Format)
	}

	if c.Browser.WindowWidth < 0 || c.Browser.WindowHeight < 0 {
		return NewValidationError(fmt.Sprintf("browser window size must not be negative: %dx%d",
			c.Browser.WindowWidth, c.Browser.WindowHeight))
	}

	if c.Browser.DebuggerURL != "" {
		u, err := url.Parse(c.Browser.DebuggerURL)
		if err != nil || u.Host == "" {
			return NewValidationError("browser.debugger_url is not a valid URL: " + c.Browser.DebuggerURL)
		}
	}

	return nil
}

// SuppressSyntheticClicks reports whether the default click policy applies
func (c *Config) SuppressSyntheticClicks() bool {
	return c.Recorder.ClickPolicy != ClickPolicyOff
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "config validation error: " + e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}
