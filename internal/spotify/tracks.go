package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/resonance/internal/recommend"
)

// fullTracks looks up tracks by ID in batches, keyed by ID.
func (c *Client) fullTracks(ctx context.Context, ids []string, market string) (map[string]*spotify.FullTrack, error) {
	out := make(map[string]*spotify.FullTrack, len(ids))
	all := toIDs(ids)

	for i := 0; i < len(all); i += maxLookupsPerRequest {
		end := min(i+maxLookupsPerRequest, len(all))
		tracks, err := c.api.GetTracks(ctx, all[i:end], spotify.Market(market))
		if err != nil {
			return nil, fmt.Errorf("fetching tracks (batch %d-%d): %w", i+1, end, err)
		}
		for _, t := range tracks {
			if t != nil {
				out[t.ID.String()] = t
			}
		}
	}
	return out, nil
}

// convertTrack converts a Spotify FullTrack to a recommendation.
func convertTrack(t *spotify.FullTrack) recommend.Track {
	rt := convertSimpleTrack(t.SimpleTrack)
	rt.Album = t.Album.Name
	if len(t.Album.Images) > 0 {
		rt.AlbumArt = t.Album.Images[0].URL
	}
	return rt
}

func convertSimpleTrack(t spotify.SimpleTrack) recommend.Track {
	names := make([]string, len(t.Artists))
	ids := make([]string, 0, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
		if a.ID != "" {
			ids = append(ids, a.ID.String())
		}
	}

	return recommend.Track{
		ID:        t.ID.String(),
		Name:      t.Name,
		Artist:    strings.Join(names, ", "),
		ArtistIDs: ids,
		URL:       t.ExternalURLs["spotify"],
		URI:       string(t.URI),
	}
}
