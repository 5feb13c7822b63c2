package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrLoginRequired is returned when no usable cached token exists and no
// interactive login flow is available.
var ErrLoginRequired = errors.New("login required")

// clientIDSuffix is appended to bare API keys to form the OAuth client ID.
const clientIDSuffix = "@AMER.OAUTHAP"

// OAuthSettings describes the authorization server.
type OAuthSettings struct {
	APIKey      string
	RedirectURI string
	AuthURL     string
	TokenURL    string
}

// NewOAuthConfig builds the oauth2 configuration for the API.
func NewOAuthConfig(s OAuthSettings) *oauth2.Config {
	clientID := s.APIKey
	if clientID != "" && !strings.Contains(clientID, "@") {
		clientID += clientIDSuffix
	}

	return &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: s.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.AuthURL,
			TokenURL:  s.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Session is an authenticated handle. It implements tdapi.TokenProvider.
type Session struct {
	source oauth2.TokenSource
}

// NewSession wraps a token source.
func NewSession(source oauth2.TokenSource) *Session {
	return &Session{source: source}
}

// Token returns a valid access token, refreshing it if needed.
func (s *Session) Token() (string, error) {
	tok, err := s.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Provider hands out sessions from the token cache, falling back to an
// interactive login.
type Provider struct {
	Config     *oauth2.Config
	CachePath  string
	Login      LoginFlow
	HTTPClient *http.Client
}

// Session returns a session from the cache if it holds a valid or
// refreshable token, otherwise runs the interactive login.
func (p *Provider) Session(ctx context.Context) (*Session, error) {
	tok, err := LoadToken(p.CachePath)
	switch {
	case err == nil && (tok.Valid() || tok.RefreshToken != ""):
		log.WithField("path", p.CachePath).Debug("using cached credentials")
		return p.newSession(ctx, tok), nil
	case err == nil:
		log.Debug("cached credentials expired")
	case !os.IsNotExist(err):
		log.WithError(err).Warn("ignoring unreadable credential cache")
	}

	return p.Interactive(ctx)
}

// Interactive runs the login flow unconditionally and caches the token.
func (p *Provider) Interactive(ctx context.Context) (*Session, error) {
	if p.Login == nil {
		return nil, ErrLoginRequired
	}
	if p.Config.ClientID == "" {
		return nil, fmt.Errorf("API key is not configured. Run: backspread configure\nOr set API_KEY environment variable")
	}

	state := uuid.NewString()
	authURL := p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	code, err := p.Login.AuthorizationCode(ctx, authURL, state)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	tok, err := p.Config.Exchange(p.clientContext(ctx), code, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	// Token is still usable if caching fails.
	if err := SaveToken(p.CachePath, tok); err != nil {
		log.WithError(err).Warn("failed to cache credentials")
	}

	return p.newSession(ctx, tok), nil
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	if p.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
	}
	return ctx
}

func (p *Provider) newSession(ctx context.Context, tok *oauth2.Token) *Session {
	base := p.Config.TokenSource(p.clientContext(ctx), tok)
	return NewSession(&cachingTokenSource{
		base:   base,
		path:   p.CachePath,
		access: tok.AccessToken,
	})
}

// cachingTokenSource writes refreshed tokens back to the cache.
type cachingTokenSource struct {
	base   oauth2.TokenSource
	path   string
	access string
}

func (c *cachingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := c.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != c.access {
		log.Debug("access token refreshed")
		c.access = tok.AccessToken
		if err := SaveToken(c.path, tok); err != nil {
			log.WithError(err).Warn("failed to cache refreshed credentials")
		}
	}
	return tok, nil
}
