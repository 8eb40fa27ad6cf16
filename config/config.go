// Package config loads and stores ytd settings in a YAML file under the
// user's config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Extraction backends.
const (
	BackendYtdlp  = "ytdlp"
	BackendNative = "native"
)

// AppName is used for the config directory and the download folder.
const AppName = "Youtube"

// Config holds user settings. Empty fields fall back to defaults.
type Config struct {
	Backend    string `yaml:"backend"`
	OutputDir  string `yaml:"output_dir,omitempty"`
	YtdlpPath  string `yaml:"ytdlp_path,omitempty"`
	FFmpegPath string `yaml:"ffmpeg_path,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{Backend: BackendYtdlp}
}

// SavePath is the config file location. YTD_CONFIG overrides it.
func SavePath() string {
	if p := os.Getenv("YTD_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "ytd", "config.yml")
}

// Exists reports whether a config file is present.
func Exists() bool {
	_, err := os.Stat(SavePath())
	return err == nil
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendYtdlp
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads SavePath, warning on stderr and using defaults when the
// file is unreadable.
func LoadOrDefault() *Config {
	cfg, err := Load(SavePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		return Default()
	}
	return cfg
}

// Save writes cfg to SavePath.
func Save(cfg *Config) error {
	return SaveTo(SavePath(), cfg)
}

// SaveTo writes cfg to path, creating parent directories.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects unknown backends.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendYtdlp, BackendNative:
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendYtdlp, BackendNative)
	}
}

// DownloadDir is where finished files go:
// <home>/Downloads/Youtube Downloads unless output_dir is set.
func (c *Config) DownloadDir() (string, error) {
	if c.OutputDir != "" {
		return c.OutputDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, "Downloads", AppName+" Downloads"), nil
}
