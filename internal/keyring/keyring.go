// Package keyring stores the API key in the system keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	// ServiceName is the keyring service name.
	ServiceName = "com.backspread.cli"

	// KeyAPIKey is the keyring key for the API consumer key.
	KeyAPIKey = "api_key"

	// EnvAPIKey overrides keyring lookups for CI/headless environments.
	EnvAPIKey = "API_KEY"
)

// ErrNotFound is returned when a secret is not found in the keyring.
var ErrNotFound = errors.New("secret not found")

// Store provides an interface for secure secret storage.
type Store interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SystemStore implements Store using the system keyring.
type SystemStore struct{}

// NewSystemStore creates a new system keyring store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

func (s *SystemStore) Get(service, key string) (string, error) {
	secret, err := gokeyring.Get(service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return secret, nil
}

func (s *SystemStore) Set(service, key, value string) error {
	return gokeyring.Set(service, key, value)
}

func (s *SystemStore) Delete(service, key string) error {
	err := gokeyring.Delete(service, key)
	if err != nil && errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}
	return err
}

// EnvStore wraps another Store and answers API key lookups from the
// environment when API_KEY is set.
type EnvStore struct {
	underlying Store
	lookup     func(string) (string, bool)
}

// NewEnvStore creates a new EnvStore reading the process environment.
func NewEnvStore(underlying Store) *EnvStore {
	return &EnvStore{underlying: underlying, lookup: os.LookupEnv}
}

// WithLookup replaces the environment lookup.
func (e *EnvStore) WithLookup(lookup func(string) (string, bool)) *EnvStore {
	e.lookup = lookup
	return e
}

func (e *EnvStore) Get(service, key string) (string, error) {
	if key == KeyAPIKey {
		if v, ok := e.lookup(EnvAPIKey); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	return e.underlying.Get(service, key)
}

func (e *EnvStore) Set(service, key, value string) error {
	return e.underlying.Set(service, key, value)
}

func (e *EnvStore) Delete(service, key string) error {
	return e.underlying.Delete(service, key)
}

// APIKey returns the stored API key. A missing key is reported with a hint
// on how to configure one.
func APIKey(store Store) (string, error) {
	key, err := store.Get(ServiceName, KeyAPIKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("API key not configured. Run: backspread configure\nOr set %s environment variable: %w", EnvAPIKey, err)
		}
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return key, nil
}
