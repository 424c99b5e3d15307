// Package config handles TOML- and YAML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"panopto-urls/internal/provider"
)

const appName = "panopto-urls"

// Config holds all application configuration.
type Config struct {
	Cookie         string `toml:"cookie" yaml:"cookie"`
	CookieName     string `toml:"cookie_name" yaml:"cookie_name"`
	FeedPath       string `toml:"feed_path" yaml:"feed_path"`
	PagePath       string `toml:"page_path" yaml:"page_path"`
	LoginPath      string `toml:"login_path" yaml:"login_path"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent" yaml:"user_agent"`
	KeepHash       bool   `toml:"keep_hash" yaml:"keep_hash"`
	Xargs          bool   `toml:"xargs" yaml:"xargs"`
	History        bool   `toml:"history" yaml:"history"`
	Debug          bool   `toml:"debug" yaml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		CookieName:     provider.DefaultCookieName,
		FeedPath:       provider.FeedPath,
		PagePath:       provider.PagePath,
		LoginPath:      provider.LoginPath,
		TimeoutSeconds: 30,
		History:        false,
		Debug:          false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the first existing config file in the config directory,
// preferring config.toml. If none exists the config.toml path is returned.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path and merges it over the defaults. An
// empty path means the XDG location. A missing file yields the defaults,
// except when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.CookieName == "" {
		return fmt.Errorf("cookie_name cannot be empty")
	}
	if strings.ContainsAny(c.CookieName, "=; \t\r\n\"") {
		return fmt.Errorf("cookie_name %q contains invalid characters", c.CookieName)
	}
	if strings.ContainsAny(c.Cookie, "; \t\r\n\"") {
		return fmt.Errorf("cookie value contains invalid characters")
	}

	paths := map[string]string{
		"feed_path":  c.FeedPath,
		"page_path":  c.PagePath,
		"login_path": c.LoginPath,
	}
	for key, p := range paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must be an absolute URL path, got %q", key, p)
		}
	}
	if c.FeedPath == c.PagePath {
		return fmt.Errorf("feed_path and page_path must differ, both are %q", c.FeedPath)
	}

	if c.TimeoutSeconds <= 0 || c.TimeoutSeconds > 600 {
		return fmt.Errorf("timeout_seconds must be between 1 and 600, got %d", c.TimeoutSeconds)
	}

	return nil
}

// HistoryPath returns the path to the run history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "history.db"), nil
}
