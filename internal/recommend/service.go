package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/clustering"
	"github.com/justestif/resonance/internal/logging"
)

// ErrNoProvider is returned when the service has nothing to ask for tracks.
var ErrNoProvider = errors.New("no recommendation provider configured")

// Service post-processes provider results: it drops excluded tracks, picks
// a varied subset, fills in genres and writes a reason for each pick.
type Service struct {
	provider Provider
	genres   GenreLookup
	features FeatureLookup
	tags     TagLookup
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithGenres enables genre lookup by artist.
func WithGenres(g GenreLookup) ServiceOption {
	return func(s *Service) { s.genres = g }
}

// WithFeatures enables audio-feature based diversification.
func WithFeatures(f FeatureLookup) ServiceOption {
	return func(s *Service) { s.features = f }
}

// WithTags enables the tag fallback for tracks whose artists have no genres.
func WithTags(t TagLookup) ServiceOption {
	return func(s *Service) { s.tags = t }
}

// NewService creates a Service around a provider.
func NewService(p Provider, opts ...ServiceOption) *Service {
	s := &Service{provider: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend returns at most q.Limit tracks for the query.
func (s *Service) Recommend(ctx context.Context, q Query) ([]Track, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.provider.Recommend(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}

	skip := q.excluded()
	var pool []Track
	for _, t := range candidates {
		if t.ID == "" || skip[t.ID] {
			continue
		}
		skip[t.ID] = true
		pool = append(pool, t)
	}

	picked := s.diversify(ctx, pool, q)
	s.enrichGenres(ctx, picked, q)
	for i := range picked {
		picked[i].Reason = reason(picked[i], q)
	}

	logging.Logger.WithFields(logrus.Fields{
		"category":   q.Category.Name,
		"candidates": len(candidates),
		"excluded":   len(candidates) - len(pool),
		"returned":   len(picked),
	}).Info("Recommendations ready")

	return picked, nil
}

func (s *Service) diversify(ctx context.Context, pool []Track, q Query) []Track {
	if s.features == nil {
		return pool[:min(q.Limit, len(pool))]
	}

	ct := make([]clustering.Track, len(pool))
	for i, t := range pool {
		ct[i] = clustering.Track{ID: t.ID, Name: t.Name, Artist: t.Artist, Rank: i}
	}
	if err := s.features.FetchAudioFeatures(ctx, ct); err != nil {
		logging.Logger.WithError(err).Warn("Audio features unavailable, keeping provider order")
		return pool[:min(q.Limit, len(pool))]
	}

	chosen := clustering.Diversify(ct, q.Profile, q.Limit)
	out := make([]Track, 0, len(chosen))
	for _, c := range chosen {
		t := pool[c.Rank]
		if c.HasFeatures() {
			t.Features = &Features{
				Valence:      float64(*c.Valence),
				Energy:       float64(*c.Energy),
				Danceability: float64(*c.Danceability),
				Acousticness: float64(*c.Acousticness),
			}
			if c.Tempo != nil {
				t.Features.Tempo = float64(*c.Tempo)
			}
		}
		out = append(out, t)
	}
	return out
}

func (s *Service) enrichGenres(ctx context.Context, tracks []Track, q Query) {
	if s.genres != nil {
		var ids []string
		for _, t := range tracks {
			if len(t.ArtistIDs) > 0 {
				ids = append(ids, t.ArtistIDs[0])
			}
		}
		if len(ids) > 0 {
			byArtist, err := s.genres.ArtistGenres(ctx, ids)
			if err != nil {
				logging.Logger.WithError(err).Warn("Artist genre lookup failed")
			}
			for i := range tracks {
				if len(tracks[i].ArtistIDs) == 0 {
					continue
				}
				if g := byArtist[tracks[i].ArtistIDs[0]]; len(g) > 0 {
					tracks[i].Genre = g[0]
				}
			}
		}
	}

	for i := range tracks {
		if tracks[i].Genre != "" {
			continue
		}
		if s.tags != nil {
			tag, err := s.tags.TopTag(ctx, firstArtist(tracks[i].Artist), tracks[i].Name)
			if err != nil {
				logging.Logger.WithError(err).WithField("track", tracks[i].Name).Debug("Tag lookup failed")
			}
			if tag != "" {
				tracks[i].Genre = strings.ToLower(tag)
				continue
			}
		}
		tracks[i].Genre = q.Seeds[0]
	}
}

// reason explains the pick in one line.
func reason(t Track, q Query) string {
	name := strings.ToLower(q.Category.Name)
	if t.Features == nil {
		return fmt.Sprintf("Matches the %s mood: %s.", name, q.Category.Description)
	}
	f := t.Features
	return fmt.Sprintf("Energy %.2f and positivity %.2f against a %.2f/%.2f target fit the %s mood.",
		f.Energy, f.Valence, q.Profile.Energy, q.Profile.Valence, name)
}

func firstArtist(artist string) string {
	name, _, _ := strings.Cut(artist, ", ")
	return name
}
