// Package config provides configuration loading and management for seiscrop.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Volumes lists the cubes of the dataset in dataset order.
	Volumes []VolumeConfig `yaml:"volumes"`

	// Sampling parameters for the training-point mixture
	Sampling struct {
		// Mode selects the per-volume sampler: "uniform" or "histogram"
		Mode string `yaml:"mode"`

		// Bins is the histogram resolution per axis (histogram mode only)
		Bins [3]int `yaml:"bins"`

		// Weights holds one mixture proportion per volume; empty means
		// uniform proportions
		Weights []float64 `yaml:"weights"`

		// Seed initializes the random sources
		Seed uint64 `yaml:"seed"`
	} `yaml:"sampling"`

	// Grid parameters for regular crop tiling
	Grid struct {
		// CropShape is the model input shape per axis
		CropShape [3]int `yaml:"cropShape"`

		// Strides is the distance between anchors; zero means CropShape
		Strides [3]int `yaml:"strides"`

		// BatchSize is the number of anchors returned per page
		BatchSize int `yaml:"batchSize"`
	} `yaml:"grid"`

	// Frontier parameters for surface extension
	Frontier struct {
		// Stride is how far each growth step extends past the boundary
		Stride int `yaml:"stride"`

		// BatchSize is the number of candidates returned per page
		BatchSize int `yaml:"batchSize"`
	} `yaml:"frontier"`
}

// VolumeConfig describes one cube of the dataset
type VolumeConfig struct {
	// Name identifies the volume in sampled points and batch metadata
	Name string `yaml:"name"`

	// Extents is the volume length per axis (inline, crossline, depth)
	Extents [3]int `yaml:"extents"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default sampling parameters
	cfg.Sampling.Mode = "uniform"
	cfg.Sampling.Bins = [3]int{100, 100, 100}
	cfg.Sampling.Seed = 42

	// Set default grid parameters
	cfg.Grid.CropShape = [3]int{1, 64, 64}
	cfg.Grid.BatchSize = 16

	// Set default frontier parameters
	cfg.Frontier.Stride = 10
	cfg.Frontier.BatchSize = 16

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the core would reject later
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Volumes))
	for _, v := range c.Volumes {
		if v.Name == "" {
			return fmt.Errorf("config: volume with empty name")
		}
		if seen[v.Name] {
			return fmt.Errorf("config: duplicate volume %q", v.Name)
		}
		seen[v.Name] = true
		for axis, n := range v.Extents {
			if n <= 0 {
				return fmt.Errorf("config: volume %q extent on axis %d must be positive", v.Name, axis)
			}
		}
	}

	switch c.Sampling.Mode {
	case "uniform", "histogram":
	default:
		return fmt.Errorf("config: unknown sampling mode %q", c.Sampling.Mode)
	}
	if len(c.Sampling.Weights) != 0 && len(c.Sampling.Weights) != len(c.Volumes) {
		return fmt.Errorf("config: %d sampling weights for %d volumes",
			len(c.Sampling.Weights), len(c.Volumes))
	}

	for axis, n := range c.Grid.CropShape {
		if n <= 0 {
			return fmt.Errorf("config: grid crop shape on axis %d must be positive", axis)
		}
	}
	if c.Grid.BatchSize <= 0 {
		return fmt.Errorf("config: grid batch size must be positive")
	}
	if c.Frontier.Stride <= 0 || c.Frontier.BatchSize <= 0 {
		return fmt.Errorf("config: frontier stride and batch size must be positive")
	}

	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
