// Package lastfm looks up user tags for tracks. Resonance uses the top tag as a
// genre label when Spotify has no genres for an artist.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/logging"
)

const (
	defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"
	userAgent      = "resonance/1.0"
)

// Last.fm API error codes.
const (
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

var (
	// ErrRateLimited is returned when the API rate limit is exceeded after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrMissingAPIKey is returned by NewClient when no key is given.
	ErrMissingAPIKey = errors.New("missing Last.fm API key")
)

// Tags that describe listening habits rather than a genre.
var ignoredTags = map[string]bool{
	"seen live":  true,
	"favorites":  true,
	"favourites": true,
	"favorite":   true,
	"love":       true,
	"loved":      true,
	"awesome":    true,
	"beautiful":  true,
	"spotify":    true,
}

// Client is a Last.fm API client with an in-memory cache and rate limit retries.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	delays     []time.Duration

	// key = "track:{artist}:{track}" or "artist:{artist}"
	cache   map[string][]Tag
	cacheMu sync.RWMutex
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryDelays sets the waits between rate-limited attempts.
func WithRetryDelays(d ...time.Duration) Option {
	return func(c *Client) { c.delays = d }
}

// NewClient creates a Last.fm client for the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		delays:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		cache:      make(map[string][]Tag),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TopTag returns the most popular genre-like tag for a track, lowercased.
// Returns "" when Last.fm knows no usable tag.
func (c *Client) TopTag(ctx context.Context, artist, track string) (string, error) {
	tags, err := c.GetTags(ctx, artist, track)
	if err != nil {
		return "", err
	}
	for _, t := range tags {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" || ignoredTags[name] {
			continue
		}
		return name, nil
	}
	return "", nil
}

// GetTags fetches tags for a track, falling back to artist tags if the track has none.
// Returns an empty slice (not nil) if no tags are found.
func (c *Client) GetTags(ctx context.Context, artist, track string) ([]Tag, error) {
	tags, err := c.topTags(ctx, fmt.Sprintf("track:%s:%s", artist, track), url.Values{
		"method": {"track.getTopTags"},
		"artist": {artist},
		"track":  {track},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching track tags: %w", err)
	}
	if len(tags) > 0 {
		return tags, nil
	}

	tags, err = c.topTags(ctx, "artist:"+artist, url.Values{
		"method": {"artist.getTopTags"},
		"artist": {artist},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching artist tags: %w", err)
	}
	return tags, nil
}

func (c *Client) topTags(ctx context.Context, cacheKey string, params url.Values) ([]Tag, error) {
	c.cacheMu.RLock()
	if cached, ok := c.cache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	params.Set("autocorrect", "1")
	params.Set("format", "json")
	params.Set("api_key", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp topTagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	tags := resp.TopTags.Tag
	if tags == nil {
		tags = []Tag{}
	}

	c.cacheMu.Lock()
	c.cache[cacheKey] = tags
	c.cacheMu.Unlock()

	return tags, nil
}

// doRequest performs a GET request, retrying with backoff while rate limited.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			logging.Logger.WithFields(logrus.Fields{
				"method":  params.Get("method"),
				"attempt": attempt,
			}).Debug("Last.fm rate limited, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
