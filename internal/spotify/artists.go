package spotify

import (
	"context"
	"fmt"
	"slices"
)

// ArtistGenres implements recommend.GenreLookup.
func (c *Client) ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error) {
	ids := toIDs(uniq(artistIDs))
	out := make(map[string][]string, len(ids))

	for i := 0; i < len(ids); i += maxLookupsPerRequest {
		end := min(i+maxLookupsPerRequest, len(ids))
		artists, err := c.api.GetArtists(ctx, ids[i:end]...)
		if err != nil {
			return out, fmt.Errorf("fetching artists (batch %d-%d): %w", i+1, end, err)
		}
		for _, a := range artists {
			if a != nil && len(a.Genres) > 0 {
				out[a.ID.String()] = a.Genres
			}
		}
	}
	return out, nil
}

func uniq(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
