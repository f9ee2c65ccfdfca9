package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Overrides holds command-line settings that take priority over the file.
type Overrides struct {
	Debug     bool
	LogFile   string
	OutputDir string
	ModelsDir string
}

// Load loads configuration with priority: defaults < file < overrides.
// An empty path searches the standard locations.
func Load(path string, ov Overrides) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyOverrides(cfg, ov)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./signmaker.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "signmaker")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "signmaker")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "signmaker")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "signmaker")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyOverrides applies CLI overrides to the config.
func applyOverrides(cfg *Config, ov Overrides) {
	if ov.Debug {
		cfg.Logging.Level = "debug"
	}
	if ov.LogFile != "" {
		cfg.Logging.LogFile = ov.LogFile
	}
	if ov.OutputDir != "" {
		cfg.Output.Dir = ov.OutputDir
	}
	if ov.ModelsDir != "" {
		cfg.Data.ModelsDir = ov.ModelsDir
	}
}
