package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/recommend"
)

// Recommend implements recommend.Provider. The profile becomes target
// attributes and the query seeds become genre seeds. Apps created after
// Spotify closed the recommendations endpoint get a 404; those fall back
// to a genre search.
func (c *Client) Recommend(ctx context.Context, q recommend.Query) ([]recommend.Track, error) {
	p := q.Profile
	attrs := spotify.NewTrackAttributes().
		TargetValence(p.Valence).
		TargetEnergy(p.Energy).
		TargetDanceability(p.Danceability).
		TargetAcousticness(p.Acousticness).
		MinTempo(p.TempoMin).
		MaxTempo(p.TempoMax).
		TargetTempo(p.TargetTempo())

	recs, err := c.api.GetRecommendations(ctx,
		spotify.Seeds{Genres: q.Seeds},
		attrs,
		spotify.Limit(q.PoolSize),
		spotify.Market(q.Market),
	)
	if isNotFound(err) {
		logging.Logger.WithField("seeds", q.Seeds).Warn("Recommendations endpoint unavailable, searching by genre")
		return c.searchByGenre(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("getting recommendations: %w", err)
	}

	ids := make([]string, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		ids = append(ids, t.ID.String())
	}

	// Recommendation results are simplified tracks; fetch the full
	// objects for album names and cover art.
	full, err := c.fullTracks(ctx, ids, q.Market)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Track, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		if ft, ok := full[t.ID.String()]; ok {
			out = append(out, convertTrack(ft))
			continue
		}
		out = append(out, convertSimpleTrack(t))
	}

	logging.Logger.WithFields(logrus.Fields{
		"seeds":  strings.Join(q.Seeds, ","),
		"tracks": len(out),
	}).Debug("Fetched recommendations")

	return out, nil
}

// searchByGenre queries each seed genre and interleaves the results.
func (c *Client) searchByGenre(ctx context.Context, q recommend.Query) ([]recommend.Track, error) {
	perSeed := max(q.PoolSize/len(q.Seeds), 1)

	var lists [][]recommend.Track
	for _, genre := range q.Seeds {
		res, err := c.api.Search(ctx, fmt.Sprintf("genre:%q", genre), spotify.SearchTypeTrack,
			spotify.Limit(perSeed), spotify.Market(q.Market))
		if err != nil {
			return nil, fmt.Errorf("searching genre %q: %w", genre, err)
		}
		if res.Tracks == nil {
			continue
		}
		var list []recommend.Track
		for _, t := range res.Tracks.Tracks {
			list = append(list, convertTrack(&t))
		}
		lists = append(lists, list)
	}

	var out []recommend.Track
	for i := 0; len(out) < q.PoolSize; i++ {
		added := false
		for _, list := range lists {
			if i < len(list) {
				out = append(out, list[i])
				added = true
			}
		}
		if !added {
			break
		}
	}
	return out[:min(len(out), q.PoolSize)], nil
}

func isNotFound(err error) bool {
	var se spotify.Error
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
