// Package config loads the CLI configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jonandersen/schwab/pkg/auth"
	"github.com/jonandersen/schwab/pkg/schwab"
)

const (
	// DefaultRedirectURI is the callback registered for most Schwab apps.
	DefaultRedirectURI = "https://127.0.0.1"
	// DefaultRequestTimeout bounds every API call.
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "console"

	// EnvPrefix prefixes every environment override, e.g. SCHWAB_API_BASE_URL.
	EnvPrefix = "SCHWAB"
)

// Config holds the CLI configuration. Credentials are not part of it; they
// live in the keyring.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url" envconfig:"API_BASE_URL"`
	AuthURL        string        `yaml:"auth_url" envconfig:"AUTH_URL"`
	TokenURL       string        `yaml:"token_url" envconfig:"TOKEN_URL"`
	RedirectURI    string        `yaml:"redirect_uri" envconfig:"REDIRECT_URI"`
	TokenPath      string        `yaml:"token_path,omitempty" envconfig:"TOKEN_PATH"`
	DefaultAccount string        `yaml:"default_account,omitempty" envconfig:"DEFAULT_ACCOUNT"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	LogLevel       string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat      string        `yaml:"log_format" envconfig:"LOG_FORMAT"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:     schwab.DefaultBaseURL,
		AuthURL:        auth.DefaultAuthURL,
		TokenURL:       auth.DefaultTokenURL,
		RedirectURI:    DefaultRedirectURI,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// Load reads the config at path. A missing file yields the defaults; fields
// absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from SCHWAB_* environment variables. Unset
// variables leave the field untouched.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// ResolvedTokenPath returns the configured token path or the default one.
func (c *Config) ResolvedTokenPath() string {
	if c.TokenPath != "" {
		return c.TokenPath
	}
	return auth.DefaultTokenPath()
}

// Save writes cfg to path, creating parent directories with 0700
// permissions. The file is written with 0600 permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// ConfigDir returns the config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/schwab.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "schwab")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "schwab")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
