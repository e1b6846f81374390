package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/resonance/internal/clustering"
)

// FetchAudioFeatures implements recommend.FeatureLookup.
// Updates tracks in-place with their audio features.
// Tracks without available audio features keep nil feature fields.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []clustering.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	indexByID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(t.ID)
		indexByID[t.ID] = i
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))

		features, err := c.api.GetAudioFeatures(ctx, ids[i:end]...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue
			}
			if idx, ok := indexByID[f.ID.String()]; ok {
				applyAudioFeatures(&tracks[idx], f)
			}
		}
	}

	return nil
}

// applyAudioFeatures copies the clustering features to a track.
func applyAudioFeatures(t *clustering.Track, f *spotify.AudioFeatures) {
	acousticness, danceability := f.Acousticness, f.Danceability
	energy, valence, tempo := f.Energy, f.Valence, f.Tempo

	t.Acousticness = &acousticness
	t.Danceability = &danceability
	t.Energy = &energy
	t.Valence = &valence
	t.Tempo = &tempo
}
