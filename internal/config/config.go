package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// getConfigDir returns the config directory path.
// Uses SHOEBOX_CONFIG_DIR env var if set, otherwise defaults to ~/.shoebox.
// This is computed dynamically to support test isolation.
func getConfigDir() string {
	if dir := os.Getenv("SHOEBOX_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shoebox")
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	return getConfigDir()
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// Config holds the tool settings from ~/.shoebox/config.yaml.
type Config struct {
	PhotosDir   string `yaml:"photos_dir"`   // library root, default: ~/Pictures/shoebox
	LogLevel    string `yaml:"log_level"`    // logging level: debug, info, warn, error, off (case insensitive)
	JPEGQuality int    `yaml:"jpeg_quality"` // encode quality for normalized output, default: 90
}

// ApplyDefaults fills zero-value fields with their defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.PhotosDir == "" {
		home, _ := os.UserHomeDir()
		cfg.PhotosDir = filepath.Join(home, "Pictures", "shoebox")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.JPEGQuality == 0 {
		cfg.JPEGQuality = 90
	}
}

// Load reads the config file, falling back to defaults when it does not
// exist yet.
func Load() (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyDefaults()
			return &cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Save writes the config file, creating the config directory if needed.
func Save(cfg *Config) error {
	if err := os.MkdirAll(getConfigDir(), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	header := []byte("# Shoebox settings\n\n")
	return os.WriteFile(ConfigPath(), append(header, data...), 0600)
}
