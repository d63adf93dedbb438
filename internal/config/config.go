// Package config loads gomacro.toml or gomacro.yaml settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File names searched by FindAndLoad, in order of preference.
var FileNames = []string{"gomacro.toml", "gomacro.yaml", "gomacro.yml"}

// Config holds gomacro settings.
type Config struct {
	Run     Run     `toml:"run" yaml:"run"`
	Screen  Screen  `toml:"screen" yaml:"screen"`
	Log     Log     `toml:"log" yaml:"log"`
	History History `toml:"history" yaml:"history"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Run configures script execution.
type Run struct {
	// Strict makes unrecognized characters a lexical error.
	Strict bool `toml:"strict" yaml:"strict"`

	// SleepScale multiplies every sleep duration (default: 1)
	SleepScale float64 `toml:"sleep_scale" yaml:"sleep_scale"`

	// JSTimeoutMS bounds each js command in milliseconds (default: 1000)
	JSTimeoutMS int `toml:"js_timeout_ms" yaml:"js_timeout_ms"`
}

// Screen configures the pixel source for get_color and color.
type Screen struct {
	// Image is a PNG, JPEG or GIF frame. Empty disables the color commands.
	Image string `toml:"image" yaml:"image"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	File      string `toml:"file" yaml:"file"`
}

// History configures the run journal.
type History struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Run: Run{
			SleepScale:  1,
			JSTimeoutMS: 1000,
		},
		History: History{
			Enabled: true,
		},
	}
}

// JSTimeout returns the js command timeout as a duration.
func (c *Config) JSTimeout() time.Duration {
	return time.Duration(c.Run.JSTimeoutMS) * time.Millisecond
}

// HistoryPath returns the journal location, defaulting to the user cache
// directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "gomacro", "history.db"), nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Run.SleepScale < 0 {
		errs = append(errs, fmt.Errorf("run.sleep_scale must not be negative, got %v", c.Run.SleepScale))
	}
	if c.Run.JSTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("run.js_timeout_ms must be positive, got %d", c.Run.JSTimeoutMS))
	}
	if c.Log.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("log.verbosity must not be negative, got %d", c.Log.Verbosity))
	}
	return errors.Join(errs...)
}

// Load reads a config file. The format is chosen by extension: .toml,
// .yaml or .yml. Unset keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// FindAndLoad walks up from startDir looking for a config file and loads
// the first one found. Without one it returns Default().
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
