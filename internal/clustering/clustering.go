// Package clustering spreads recommendation candidates across the audio
// feature space with k-means.
package clustering

// Track is a candidate song with its audio features.
// Rank is the position the provider returned it at; lower is better.
type Track struct {
	ID     string
	Name   string
	Artist string
	Rank   int
	// Audio features (nil if not fetched or unavailable)
	Acousticness *float32
	Danceability *float32
	Energy       *float32
	Valence      *float32
	Tempo        *float32
}

// HasFeatures reports whether the features used for clustering are present.
func (t *Track) HasFeatures() bool {
	return t.Energy != nil &&
		t.Valence != nil &&
		t.Danceability != nil &&
		t.Acousticness != nil
}
