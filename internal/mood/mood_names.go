package mood

import (
	"fmt"
	"strings"
)

// Category is a display-level classification of a Profile.
type Category struct {
	Name        string   // Display name, e.g. "Chill & Happy (Acoustic)"
	Description string   // Brief description of the mood
	Seeds       []string // Spotify genre seeds that suit the mood
}

// Category classifies the profile with a 2x2 energy/valence quadrant system
// and an acousticness modifier.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acousticness modifier: if > 0.6, appends "(Acoustic)" to the name.
func (p Profile) Category() Category {
	// Determine quadrant based on energy and valence thresholds
	highEnergy := p.Energy > 0.6
	highValence := p.Valence > 0.5

	var c Category
	switch {
	case highEnergy && highValence:
		c = Category{
			Name:        "Upbeat Party",
			Description: "high-energy, positive vibes that keep the pace up",
			Seeds:       []string{"pop", "dance", "funk"},
		}
	case highEnergy && !highValence:
		c = Category{
			Name:        "Intense & Dark",
			Description: "driving energy with darker emotional tones",
			Seeds:       []string{"rock", "hip-hop", "electronic"},
		}
	case !highEnergy && highValence:
		c = Category{
			Name:        "Chill & Happy",
			Description: "relaxed and uplifting, sitting easily under the voice",
			Seeds:       []string{"indie", "soul", "chill"},
		}
	default: // low energy, low valence
		c = Category{
			Name:        "Reflective & Melancholy",
			Description: "slow and cinematic, letting the words land",
			Seeds:       []string{"ambient", "piano", "soundtracks"},
		}
	}

	// Add acoustic modifier if acousticness is high
	if p.Acousticness > 0.6 {
		c.Name += " (Acoustic)"
		c.Seeds = append([]string{"acoustic"}, c.Seeds[:2]...)
	}

	return c
}

// Describe returns a one-sentence vibe read for the scores and the profile
// they mapped to.
func Describe(scores []Score, p Profile) string {
	c := p.Category()
	dominant := Dominant(scores)

	lead := "No clear emotion comes through"
	if dominant != Neutral {
		lead = fmt.Sprintf("Mostly %s", dominant)
	}

	return fmt.Sprintf("%s, so the music should be %s: %s, around %.0f BPM.",
		lead, strings.ToLower(c.Name), c.Description, p.TargetTempo())
}
