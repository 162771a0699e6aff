// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"phone-scan/internal/paths"

	"gopkg.in/yaml.v3"
)

// DefaultMaxFileSize bounds the content read from a single file. It matches
// the largest input the scanner accepts.
const DefaultMaxFileSize = 10 << 20

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults Settings `yaml:"defaults"`

	// Web server settings
	Web struct {
		Port int `yaml:"port"`
	} `yaml:"web"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Settings holds the options shared by the CLI and the web server
type Settings struct {
	Format           string   `yaml:"format"`
	ConfidenceLevels string   `yaml:"confidence_levels"`
	Categories       string   `yaml:"categories"`
	Verbose          bool     `yaml:"verbose"`
	Debug            bool     `yaml:"debug"`
	NoColor          bool     `yaml:"no_color"`
	ShowMatch        bool     `yaml:"show_match"`
	Recursive        bool     `yaml:"recursive"`
	Workers          int      `yaml:"workers"`
	MaxFileSize      int64    `yaml:"max_file_size"`
	SuppressionFile  string   `yaml:"suppression_file"`
	ExcludePatterns  []string `yaml:"exclude_patterns"`
}

// Profile represents a scanning profile with specific settings. Empty fields
// leave the defaults untouched.
type Profile struct {
	Settings    `yaml:",inline"`
	Description string `yaml:"description"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// A file that declares profiles replaces the map; keep the built-in ones
	for name, profile := range builtinProfiles() {
		if _, exists := config.Profiles[name]; !exists {
			if config.Profiles == nil {
				config.Profiles = make(map[string]Profile)
			}
			config.Profiles[name] = profile
		}
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = defaultConfig()
	}
	return cfg
}

func defaultConfig() *Config {
	config := &Config{Profiles: builtinProfiles()}

	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"
	config.Defaults.Categories = "all"
	config.Defaults.Workers = 0 // auto
	config.Defaults.MaxFileSize = DefaultMaxFileSize
	config.Web.Port = 8080

	return config
}

func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		"quick": {
			Settings: Settings{
				Format:           "text",
				ConfidenceLevels: "high,medium",
			},
			Description: "Only confident findings in plain text",
		},
	}
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	if fileExists("phone-scan.yaml") {
		return "phone-scan.yaml"
	}
	if fileExists(".phone-scan.yaml") {
		return ".phone-scan.yaml"
	}

	if userConfig := paths.GetConfigFile(); userConfig != "" && fileExists(userConfig) {
		return userConfig
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeConfig := filepath.Join(home, ".phone-scan.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the profile names in sorted order
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns the named profile or nil
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the named profile onto the defaults
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(c.ListProfiles(), ", "))
	}

	p := profile.Settings
	d := &c.Defaults
	if p.Format != "" {
		d.Format = p.Format
	}
	if p.ConfidenceLevels != "" {
		d.ConfidenceLevels = p.ConfidenceLevels
	}
	if p.Categories != "" {
		d.Categories = p.Categories
	}
	if p.Workers > 0 {
		d.Workers = p.Workers
	}
	if p.MaxFileSize > 0 {
		d.MaxFileSize = p.MaxFileSize
	}
	if p.SuppressionFile != "" {
		d.SuppressionFile = p.SuppressionFile
	}
	if len(p.ExcludePatterns) > 0 {
		d.ExcludePatterns = p.ExcludePatterns
	}
	d.Verbose = d.Verbose || p.Verbose
	d.Debug = d.Debug || p.Debug
	d.NoColor = d.NoColor || p.NoColor
	d.ShowMatch = d.ShowMatch || p.ShowMatch
	d.Recursive = d.Recursive || p.Recursive

	return ValidateConfig(c)
}

// ValidateConfig rejects values no component can work with
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Defaults.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", config.Defaults.Workers)
	}
	if config.Defaults.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", config.Defaults.MaxFileSize)
	}
	if config.Defaults.MaxFileSize > DefaultMaxFileSize {
		return fmt.Errorf("max_file_size must not exceed %d bytes, got %d", DefaultMaxFileSize, config.Defaults.MaxFileSize)
	}
	if config.Web.Port < 0 || config.Web.Port > 65535 {
		return fmt.Errorf("web port out of range: %d", config.Web.Port)
	}
	for _, pattern := range config.Defaults.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	return nil
}
