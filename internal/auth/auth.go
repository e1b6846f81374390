// Package auth provides Spotify credentials: the app-level client-credentials
// token used for recommendations and the user OAuth flow used for playlists.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/justestif/resonance/internal/logging"
)

var (
	// ErrMissingCredentials is returned when the Spotify client ID or secret is not set.
	ErrMissingCredentials = errors.New("missing Spotify client ID or secret (set SPOTIFY_ID and SPOTIFY_SECRET)")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// NewUserAuthenticator builds the authorization-code authenticator for signing
// users in. The scopes cover reading the profile and writing private playlists.
func NewUserAuthenticator(clientID, clientSecret, redirectURL string) (*spotifyauth.Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}
	return spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithRedirectURL(redirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopePlaylistModifyPrivate,
		),
	), nil
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ClientCredentials is an oauth2.TokenSource for the app token. The token is
// shared by every request; it is fetched lazily and again once it expires.
type ClientCredentials struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
	cache      *TokenCache

	mu    sync.Mutex
	token *oauth2.Token
}

// Option configures ClientCredentials.
type Option func(*ClientCredentials)

// WithTokenURL overrides the token endpoint (for testing).
func WithTokenURL(url string) Option {
	return func(c *ClientCredentials) {
		c.cfg.TokenURL = url
	}
}

// WithTokenCache persists the token between runs.
func WithTokenCache(cache *TokenCache) Option {
	return func(c *ClientCredentials) {
		c.cache = cache
	}
}

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ClientCredentials) {
		c.httpClient = hc
	}
}

// NewClientCredentials creates the app token source.
// Returns ErrMissingCredentials if either value is empty.
func NewClientCredentials(clientID, clientSecret string, opts ...Option) (*ClientCredentials, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	c := &ClientCredentials{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the cached token, fetching a new one if it is missing or expired.
func (c *ClientCredentials) Token() (*oauth2.Token, error) {
	return c.TokenContext(context.Background())
}

// TokenContext is Token with a context for the network call.
func (c *ClientCredentials) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token, nil
	}

	if c.token == nil && c.cache != nil {
		cached, err := c.cache.Load()
		if err != nil {
			logging.Logger.WithError(err).Warn("Ignoring unreadable token cache")
		} else if cached.Valid() {
			c.token = cached
			return c.token, nil
		}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching client credentials token: %w", err)
	}
	c.token = token

	if c.cache != nil {
		if err := c.cache.Save(token); err != nil {
			logging.Logger.WithError(err).Warn("Failed to cache app token")
		}
	}

	return token, nil
}

// Client returns an HTTP client that authorizes every request with the app token.
func (c *ClientCredentials) Client(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c)
}
