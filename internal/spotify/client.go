// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
)

// Spotify caps ID lists per request at these sizes.
const (
	maxTracksPerRequest  = 100
	maxLookupsPerRequest = 50
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewFromHTTP builds a client on an authorized HTTP client, retrying
// rate-limited requests. A non-empty baseURL overrides the API root.
func NewFromHTTP(hc *http.Client, baseURL string) *Client {
	opts := []spotify.ClientOption{spotify.WithRetry(true)}
	if baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(baseURL))
	}
	return New(spotify.New(hc, opts...))
}

// User is the signed-in Spotify account.
type User struct {
	ID          string
	DisplayName string
}

// CurrentUser returns the account the client is authorized for.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("getting current user: %w", err)
	}
	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	return User{ID: user.ID, DisplayName: name}, nil
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}
