package clustering

import (
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/mood"
)

// trackObservation wraps a Track to implement clusters.Observation interface.
type trackObservation struct {
	track  *Track
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Diversify selects up to n tracks that cover different corners of the
// feature space. Tracks with features are partitioned into n clusters and
// the member of each cluster nearest the target profile is kept. Remaining
// slots are filled in rank order. The result is sorted by rank.
//
// k-means starts from random centers, so repeated calls may pick different
// tracks from the same input.
func Diversify(tracks []Track, target mood.Profile, n int) []Track {
	if n <= 0 {
		return nil
	}

	ranked := slices.Clone(tracks)
	slices.SortStableFunc(ranked, func(a, b Track) int { return a.Rank - b.Rank })
	if len(ranked) <= n {
		return ranked
	}

	var obs clusters.Observations
	for i := range ranked {
		if ranked[i].HasFeatures() {
			obs = append(obs, trackObservation{track: &ranked[i], coords: extractFeatures(&ranked[i])})
		}
	}

	k := min(n, len(obs))
	if k < 2 {
		return ranked[:n]
	}

	result, err := kmeans.New().Partition(obs, k)
	if err != nil {
		logging.Logger.WithError(err).Warn("k-means partition failed, keeping provider order")
		return ranked[:n]
	}

	goal := profileCoordinates(target)
	picked := make(map[string]bool, n)
	var out []Track
	for _, cluster := range result {
		var best *Track
		bestDist := 0.0
		for _, o := range cluster.Observations {
			to, ok := o.(trackObservation)
			if !ok {
				continue
			}
			d := to.Distance(goal)
			if best == nil || d < bestDist || (d == bestDist && to.track.Rank < best.Rank) {
				best, bestDist = to.track, d
			}
		}
		if best != nil && !picked[best.ID] {
			picked[best.ID] = true
			out = append(out, *best)
		}
	}

	for _, t := range ranked {
		if len(out) >= n {
			break
		}
		if !picked[t.ID] {
			picked[t.ID] = true
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b Track) int { return a.Rank - b.Rank })

	logging.Logger.WithFields(logrus.Fields{
		"candidates": len(tracks),
		"clusters":   len(result),
		"kept":       len(out),
	}).Debug("Diversified recommendations")

	return out
}

// extractFeatures extracts the audio features used for clustering as a coordinate vector.
func extractFeatures(t *Track) clusters.Coordinates {
	return clusters.Coordinates{
		float64(*t.Energy),
		float64(*t.Valence),
		float64(*t.Danceability),
		float64(*t.Acousticness),
	}
}

func profileCoordinates(p mood.Profile) clusters.Coordinates {
	return clusters.Coordinates{p.Energy, p.Valence, p.Danceability, p.Acousticness}
}
