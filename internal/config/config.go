// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/gradetool/internal/grade"

	"gopkg.in/yaml.v3"
)

// Defaults applied to empty configuration values.
const (
	DefaultStoragePath = "survey.db"
	DefaultStorageKey  = "GeoSurveyLines"
	DefaultAddr        = "0.0.0.0"
	DefaultPort        = 8080
)

// Config represents the root configuration file structure.
type Config struct {
	Storage Storage `yaml:"storage" json:"storage"`
	Server  Server  `yaml:"server" json:"server"`
	Display Display `yaml:"display" json:"display"`
}

// Storage selects where the survey is persisted.
type Storage struct {
	Path string `yaml:"path" json:"path"`
	Key  string `yaml:"key" json:"key"` // blob key the survey is stored under
}

// Server holds the HTTP listener settings.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
	Port int    `yaml:"port" json:"port"`
}

// Display holds presentation preferences. They are handed to formatting
// code explicitly and never read by the survey engine.
type Display struct {
	GradeUnits      grade.Units `yaml:"grade_units" json:"grade_units"`
	DebouncePercent float64     `yaml:"debounce_percent" json:"debounce_percent"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration, fills defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that have no sensible meaning.
func (c *Config) Validate() error {
	if _, err := grade.ParseUnits(string(c.Display.GradeUnits)); err != nil {
		return fmt.Errorf("display.grade_units: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Display.DebouncePercent < 0 {
		return fmt.Errorf("display.debounce_percent must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath
	}
	if c.Storage.Key == "" {
		c.Storage.Key = DefaultStorageKey
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Display.GradeUnits == "" {
		c.Display.GradeUnits = grade.Percent
	}
	if c.Display.DebouncePercent == 0 {
		c.Display.DebouncePercent = grade.DefaultThreshold
	}
}
