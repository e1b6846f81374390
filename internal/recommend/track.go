package recommend

import (
	"context"

	"github.com/justestif/resonance/internal/clustering"
)

// Features are the audio features of a recommended track.
type Features struct {
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
	Tempo        float64 `json:"tempo"`
}

// Track is a song suggestion as shown to the user.
type Track struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Artist    string    `json:"artist"`
	ArtistIDs []string  `json:"-"`
	Album     string    `json:"album"`
	AlbumArt  string    `json:"album_art,omitempty"`
	URL       string    `json:"url"`
	URI       string    `json:"uri"`
	Genre     string    `json:"genre"`
	Reason    string    `json:"reason"`
	Features  *Features `json:"features,omitempty"`
}

// Provider returns candidate tracks for a query, best first.
type Provider interface {
	Recommend(ctx context.Context, q Query) ([]Track, error)
}

// GenreLookup returns the genres of each artist, keyed by artist ID.
type GenreLookup interface {
	ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error)
}

// FeatureLookup fills in audio features on the given tracks in place.
type FeatureLookup interface {
	FetchAudioFeatures(ctx context.Context, tracks []clustering.Track) error
}

// TagLookup returns the most popular user tag for a track, or "" if none.
type TagLookup interface {
	TopTag(ctx context.Context, artist, track string) (string, error)
}
