package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// Playlist is a newly created playlist.
type Playlist struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePlaylist creates a private playlist for the current user and fills it.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (Playlist, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return Playlist{}, err
	}

	pl, err := c.api.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		return Playlist{}, fmt.Errorf("creating playlist: %w", err)
	}

	if err := c.AddTracksToPlaylist(ctx, pl.ID.String(), trackIDs); err != nil {
		return Playlist{}, err
	}

	return Playlist{ID: pl.ID.String(), URL: pl.ExternalURLs["spotify"]}, nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := toIDs(trackIDs)

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[i:end]...); err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}

	return nil
}
