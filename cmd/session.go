package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonandersen/backspread/internal/auth"
	"github.com/jonandersen/backspread/internal/config"
	"github.com/jonandersen/backspread/internal/keyring"
	"github.com/jonandersen/backspread/pkg/tdapi"
)

// clientFactory returns an authenticated API client. Commands take one so
// tests can point them at an httptest server.
type clientFactory func(ctx context.Context) (*tdapi.Client, error)

// loadConfig reads the config file and applies environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// newProvider builds the credential provider for cfg. A missing API key is
// not an error here: a valid cached token does not need one.
func newProvider(cfg *config.Config, store keyring.Store) (*auth.Provider, error) {
	apiKey, err := keyring.APIKey(store)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return nil, err
	}

	cachePath := cfg.TokenPath
	if cachePath == "" {
		cachePath = auth.TokenCachePath()
	}

	return &auth.Provider{
		Config: auth.NewOAuthConfig(auth.OAuthSettings{
			APIKey:      apiKey,
			RedirectURI: cfg.RedirectURI,
			AuthURL:     cfg.AuthURL,
			TokenURL:    cfg.TokenURL,
		}),
		CachePath: cachePath,
		Login:     &auth.TerminalLogin{In: os.Stdin, Out: os.Stderr},
	}, nil
}

// sessionClients returns a clientFactory backed by the credential cache and
// interactive login.
func sessionClients(cfg *config.Config) clientFactory {
	return func(ctx context.Context) (*tdapi.Client, error) {
		provider, err := newProvider(cfg, keyring.NewEnvStore(keyring.NewSystemStore()))
		if err != nil {
			return nil, err
		}
		session, err := provider.Session(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire session: %w", err)
		}
		return tdapi.NewClient(cfg.APIBaseURL, session), nil
	}
}

// withAPIHint appends the next step for API errors the user can act on.
func withAPIHint(err error) error {
	var apiErr *tdapi.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.IsUnauthorized():
		return fmt.Errorf("%w (run: backspread login)", err)
	case apiErr.IsForbidden():
		return fmt.Errorf("%w (check the API key: backspread configure)", err)
	case apiErr.IsNotFound():
		return fmt.Errorf("%w (check the symbol)", err)
	}
	return err
}
