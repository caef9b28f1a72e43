package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aktagon/ldcard/card"
)

const (
	defaultConfigDir = ".ldcard"
	minConcurrency   = 1
	formatHTML       = "html"
	formatMarkdown   = "markdown"
	stdoutDirectory  = "-"
	storeMemory      = "memory"
	storeSQLite      = "sqlite"
	storeRedis       = "redis"
)

//go:embed config/settings.yaml
var defaultSettings string

// ConfigOverrides allows overriding settings from the command line
type ConfigOverrides struct {
	SettingsPath    *string
	Format          *string
	OutputDirectory *string
	Store           *string
	Wait            *time.Duration
	Embed           bool
}

// Settings represents the YAML configuration structure
type Settings struct {
	OutputDirectory string         `yaml:"output_directory"`
	Format          string         `yaml:"format"`
	ContainerID     string         `yaml:"container_id"`
	Concurrency     int            `yaml:"concurrency"`
	LogLevel        string         `yaml:"log_level"`
	Avatar          AvatarSettings `yaml:"avatar"`
}

// AvatarSettings configures the avatar lookup chain and its store
type AvatarSettings struct {
	Endpoint string         `yaml:"endpoint"`
	Timeout  time.Duration  `yaml:"timeout"`
	Wait     time.Duration  `yaml:"wait"`
	Store    string         `yaml:"store"`
	SQLite   SQLiteSettings `yaml:"sqlite"`
	Redis    RedisSettings  `yaml:"redis"`
}

// SQLiteSettings locates the SQLite avatar store
type SQLiteSettings struct {
	Path string `yaml:"path"`
}

// RedisSettings locates the Redis avatar store
type RedisSettings struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// Config holds settings and the overrides they were built with
type Config struct {
	Settings  *Settings
	Overrides *ConfigOverrides
}

// NewConfig loads settings, applies overrides and validates the result
func NewConfig(overrides *ConfigOverrides) (*Config, error) {
	if overrides == nil {
		overrides = &ConfigOverrides{}
	}

	var settings *Settings
	var err error
	if overrides.SettingsPath != nil {
		// Explicit settings file must exist
		settings, err = loadSettingsRequired(*overrides.SettingsPath)
	} else {
		if err := ensureConfigExists(); err != nil {
			return nil, fmt.Errorf("ensuring config files exist: %w", err)
		}
		settings, err = loadSettings(getConfigPath("settings.yaml"))
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	applyOverrides(settings, overrides)
	if err := validateSettings(settings, overrides); err != nil {
		return nil, err
	}

	return &Config{Settings: settings, Overrides: overrides}, nil
}

// Embed reports whether cards are injected into their host document
func (c *Config) Embed() bool {
	return c.Overrides != nil && c.Overrides.Embed
}

func applyOverrides(settings *Settings, overrides *ConfigOverrides) {
	if overrides.Format != nil {
		settings.Format = *overrides.Format
	}
	if overrides.OutputDirectory != nil {
		settings.OutputDirectory = *overrides.OutputDirectory
	}
	if overrides.Store != nil {
		settings.Avatar.Store = *overrides.Store
	}
	if overrides.Wait != nil {
		settings.Avatar.Wait = *overrides.Wait
	}
}

func validateSettings(settings *Settings, overrides *ConfigOverrides) error {
	settings.Format = strings.ToLower(strings.TrimSpace(settings.Format))
	switch settings.Format {
	case formatHTML, formatMarkdown:
	default:
		return fmt.Errorf("unsupported format %q (want %s or %s)", settings.Format, formatHTML, formatMarkdown)
	}
	if overrides.Embed && settings.Format != formatHTML {
		return fmt.Errorf("--embed requires the %s format", formatHTML)
	}

	settings.Avatar.Store = strings.ToLower(strings.TrimSpace(settings.Avatar.Store))
	switch settings.Avatar.Store {
	case "", storeMemory, storeSQLite, storeRedis:
	default:
		return fmt.Errorf("unsupported avatar store %q", settings.Avatar.Store)
	}

	if _, err := parseLogLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// loadSettings loads settings from YAML file with fallback to defaults
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return parseSettings([]byte(defaultSettings))
	}
	return parseSettings(data)
}

// loadSettingsRequired loads settings from YAML file, failing if file doesn't exist
func loadSettingsRequired(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", settingsPath, err)
	}
	return parseSettings(data)
}

// parseSettings decodes YAML over the embedded defaults so missing keys keep
// their default values
func parseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal([]byte(defaultSettings), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse default settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	if settings.Concurrency < minConcurrency {
		log.Printf("Warning: concurrency is %d, defaulting to %d (minimum)", settings.Concurrency, minConcurrency)
		settings.Concurrency = minConcurrency
	}
	if settings.ContainerID == "" {
		settings.ContainerID = card.DefaultContainerID
	}
	return &settings, nil
}

// getConfigPath returns the path to a config file in .ldcard directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists creates the config directory and default settings if they don't exist
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	settingsPath := getConfigPath("settings.yaml")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("writing settings.yaml: %w", err)
		}
	}
	return nil
}
