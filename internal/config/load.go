package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
		expandHome(cfg)
		resolvePaths(cfg, configPath)
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)
	expandHome(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./urdf2iv.yaml",
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
		home, _ := homedir.Dir()
		return filepath.Join(home, "Library", "Application Support", "urdf2iv")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "urdf2iv")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "urdf2iv")
		}
		home, _ := homedir.Dir()
		return filepath.Join(home, ".config", "urdf2iv")
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

// resolvePaths makes package directories given in a config file relative to
// that file, so a project config works from any working directory.
func resolvePaths(cfg *Config, configPath string) {
	base := filepath.Dir(configPath)
	for name, dir := range cfg.Convert.Packages {
		if !filepath.IsAbs(dir) {
			cfg.Convert.Packages[name] = filepath.Join(base, dir)
		}
	}
}

// expandHome replaces a leading "~" in every path setting.
func expandHome(cfg *Config) {
	expand := func(p *string) {
		if e, err := homedir.Expand(*p); err == nil {
			*p = e
		}
	}
	expand(&cfg.Convert.URDF)
	expand(&cfg.Output.Dir)
	expand(&cfg.Logging.LogFile)
	for name, dir := range cfg.Convert.Packages {
		expand(&dir)
		cfg.Convert.Packages[name] = dir
	}
}
