package mood

import "math"

// Valid ranges accepted by the recommendations API.
const (
	MinUnit  = 0.0
	MaxUnit  = 1.0
	MinTempo = 40.0
	MaxTempo = 220.0
)

// Profile is the target vector of musical attributes for one request.
type Profile struct {
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
	TempoMin     float64 `json:"tempo_min"`
	TempoMax     float64 `json:"tempo_max"`
}

// canonical holds the profile for each known emotion, indexed by Emotion.
var canonical = [numEmotions]Profile{
	Joy:      {Valence: 0.85, Energy: 0.80, Danceability: 0.70, Acousticness: 0.20, TempoMin: 110, TempoMax: 140},
	Sadness:  {Valence: 0.15, Energy: 0.25, Danceability: 0.30, Acousticness: 0.65, TempoMin: 60, TempoMax: 90},
	Anger:    {Valence: 0.20, Energy: 0.90, Danceability: 0.50, Acousticness: 0.10, TempoMin: 130, TempoMax: 170},
	Fear:     {Valence: 0.20, Energy: 0.65, Danceability: 0.35, Acousticness: 0.30, TempoMin: 90, TempoMax: 130},
	Surprise: {Valence: 0.60, Energy: 0.80, Danceability: 0.60, Acousticness: 0.20, TempoMin: 115, TempoMax: 150},
	Neutral:  {Valence: 0.50, Energy: 0.50, Danceability: 0.50, Acousticness: 0.40, TempoMin: 90, TempoMax: 120},
}

// Canonical returns the fixed profile for a known emotion.
func Canonical(e Emotion) (Profile, bool) {
	if !e.Known() {
		return Profile{}, false
	}
	return canonical[e], true
}

// NeutralProfile returns the default profile used when there is no usable emotion signal.
func NeutralProfile() Profile {
	return canonical[Neutral]
}

// TargetTempo is the midpoint of the tempo range.
func (p Profile) TargetTempo() float64 {
	return (p.TempoMin + p.TempoMax) / 2
}

// Clamp forces every attribute into its valid range. A reversed tempo range
// is swapped.
func (p Profile) Clamp() Profile {
	p.Valence = clamp(p.Valence, MinUnit, MaxUnit)
	p.Energy = clamp(p.Energy, MinUnit, MaxUnit)
	p.Danceability = clamp(p.Danceability, MinUnit, MaxUnit)
	p.Acousticness = clamp(p.Acousticness, MinUnit, MaxUnit)
	p.TempoMin = clamp(p.TempoMin, MinTempo, MaxTempo)
	p.TempoMax = clamp(p.TempoMax, MinTempo, MaxTempo)
	if p.TempoMin > p.TempoMax {
		p.TempoMin, p.TempoMax = p.TempoMax, p.TempoMin
	}
	return p
}

// InRange reports whether every attribute is within bounds.
func (p Profile) InRange() bool {
	unit := func(v float64) bool { return v >= MinUnit && v <= MaxUnit }
	tempo := func(v float64) bool { return v >= MinTempo && v <= MaxTempo }
	return unit(p.Valence) && unit(p.Energy) && unit(p.Danceability) && unit(p.Acousticness) &&
		tempo(p.TempoMin) && tempo(p.TempoMax) && p.TempoMin <= p.TempoMax
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// addScaled returns p + w*q, attribute-wise.
func (p Profile) addScaled(q Profile, w float64) Profile {
	return Profile{
		Valence:      p.Valence + w*q.Valence,
		Energy:       p.Energy + w*q.Energy,
		Danceability: p.Danceability + w*q.Danceability,
		Acousticness: p.Acousticness + w*q.Acousticness,
		TempoMin:     p.TempoMin + w*q.TempoMin,
		TempoMax:     p.TempoMax + w*q.TempoMax,
	}
}

// divide returns p / d, attribute-wise.
func (p Profile) divide(d float64) Profile {
	return Profile{
		Valence:      p.Valence / d,
		Energy:       p.Energy / d,
		Danceability: p.Danceability / d,
		Acousticness: p.Acousticness / d,
		TempoMin:     p.TempoMin / d,
		TempoMax:     p.TempoMax / d,
	}
}
