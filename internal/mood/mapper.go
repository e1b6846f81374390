package mood

import "math"

// Default thresholds.
const (
	// DefaultConfidenceThreshold is the minimum strength for a lone emotion
	// to count as a signal.
	DefaultConfidenceThreshold = 0.2

	// DefaultDominanceThreshold is the share of the total strength above which
	// one emotion is treated as the only emotion.
	DefaultDominanceThreshold = 0.9
)

// Mapper turns emotion scores into a Profile.
type Mapper struct {
	ConfidenceThreshold float64
	DominanceThreshold  float64
}

// DefaultMapper returns a Mapper with the default thresholds.
func DefaultMapper() Mapper {
	return Mapper{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		DominanceThreshold:  DefaultDominanceThreshold,
	}
}

// Map uses DefaultMapper.
func Map(scores []Score) Profile {
	return DefaultMapper().Map(scores)
}

// Map computes the target profile for the given scores.
//
// Unknown labels are dropped, strengths are clamped to [0, 1] and repeated
// labels keep their highest strength. No usable signal yields the neutral
// profile. One label (or one label holding at least DominanceThreshold of the
// total strength) yields its canonical profile when it reaches
// ConfidenceThreshold. Otherwise the result is the strength-weighted mean of
// the canonical profiles. The result is always clamped.
func (m Mapper) Map(scores []Score) Profile {
	merged := Sanitize(scores)

	switch len(merged) {
	case 0:
		return NeutralProfile()
	case 1:
		return m.single(merged[0]).Clamp()
	}

	var total float64
	top := merged[0]
	for _, s := range merged {
		total += s.Strength
		if s.Strength > top.Strength {
			top = s
		}
	}
	if total == 0 {
		return NeutralProfile()
	}
	if top.Strength/total >= m.DominanceThreshold {
		return m.single(top).Clamp()
	}

	var sum Profile
	for _, s := range merged {
		sum = sum.addScaled(canonical[s.Emotion], s.Strength)
	}
	return sum.divide(total).Clamp()
}

func (m Mapper) single(s Score) Profile {
	if s.Strength < m.ConfidenceThreshold {
		return NeutralProfile()
	}
	return canonical[s.Emotion]
}

// Sanitize drops unknown labels, clamps strengths to [0, 1] and merges
// repeated labels by keeping the highest strength. Order of first appearance
// is preserved.
func Sanitize(scores []Score) []Score {
	out := make([]Score, 0, len(scores))
	index := make(map[Emotion]int, len(scores))

	for _, s := range scores {
		if !s.Emotion.Known() {
			continue
		}
		strength := s.Strength
		if math.IsNaN(strength) {
			strength = 0
		}
		strength = clamp(strength, 0, 1)

		if i, ok := index[s.Emotion]; ok {
			if strength > out[i].Strength {
				out[i].Strength = strength
			}
			continue
		}
		index[s.Emotion] = len(out)
		out = append(out, Score{Emotion: s.Emotion, Strength: strength})
	}

	return out
}

// Dominant returns the strongest known emotion, or Neutral when there is none.
// Ties go to the emotion listed first.
func Dominant(scores []Score) Emotion {
	best := Score{Emotion: Neutral}
	for _, s := range Sanitize(scores) {
		if s.Strength > best.Strength {
			best = s
		}
	}
	return best.Emotion
}
