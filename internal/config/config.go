package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonandersen/backspread/pkg/tdapi"
)

const (
	// DefaultAPIBaseURL is the default market data API host.
	DefaultAPIBaseURL = tdapi.DefaultBaseURL
	// DefaultAuthURL is the OAuth authorization endpoint.
	DefaultAuthURL = "https://auth.tdameritrade.com/auth"
	// DefaultTokenURL is the OAuth token endpoint.
	DefaultTokenURL = "https://api.tdameritrade.com/v1/oauth2/token"
	// DefaultRedirectURI is the callback registered with the API app.
	DefaultRedirectURI = "https://localhost"
	// DefaultDTEWindow is the number of days either side of the target DTE
	// requested from the chains endpoint.
	DefaultDTEWindow = 10

	// DefaultEnvFile is loaded on startup when present.
	DefaultEnvFile = ".env"
)

// Config holds the CLI configuration.
type Config struct {
	APIBaseURL  string `yaml:"api_base_url"`
	AuthURL     string `yaml:"auth_url"`
	TokenURL    string `yaml:"token_url"`
	RedirectURI string `yaml:"redirect_uri"`
	TokenPath   string `yaml:"token_path"`
	DTEWindow   int    `yaml:"dte_window"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:  DefaultAPIBaseURL,
		AuthURL:     DefaultAuthURL,
		TokenURL:    DefaultTokenURL,
		RedirectURI: DefaultRedirectURI,
		DTEWindow:   DefaultDTEWindow,
	}
}

// ConfigDir returns the configuration directory, honoring XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "backspread")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "backspread")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Load reads the config file at path. A missing file yields the defaults;
// fields absent from the file keep their default values.
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

	if cfg.DTEWindow < 0 {
		return nil, fmt.Errorf("dte_window must not be negative, got %d", cfg.DTEWindow)
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides file values with REDIRECT_URI, TOKEN_PATH and
// API_BASE_URL when they are set.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if v, ok := lookup("REDIRECT_URI"); ok && v != "" {
		c.RedirectURI = v
	}
	if v, ok := lookup("TOKEN_PATH"); ok && v != "" {
		c.TokenPath = v
	}
	if v, ok := lookup("API_BASE_URL"); ok && v != "" {
		c.APIBaseURL = v
	}
}

// LoadEnvFile loads variables from a dotenv file without overriding
// variables already present in the environment. A missing default file is
// not an error; a missing explicit file is.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
