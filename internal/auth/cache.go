package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// SaveToken writes a token to the cache file.
// Creates parent directories if needed with 0700 permissions.
// The file is written with 0600 permissions.
func SaveToken(path string, token *oauth2.Token) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// LoadToken reads a token from the cache file.
// Returns an error if the file doesn't exist or contains invalid JSON.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}

	return &token, nil
}

// DeleteToken removes the token cache file.
// Returns nil if the file doesn't exist.
func DeleteToken(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// TokenCachePath returns the default path of the token cache file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/backspread.
func TokenCachePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "backspread")
	} else {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config", "backspread")
	}
	return filepath.Join(configDir, "token.json")
}
