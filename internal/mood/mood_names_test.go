package mood

import (
	"strings"
	"testing"
)

func TestProfileCategory(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{
			name:    "high energy high valence",
			profile: Profile{Energy: 0.8, Valence: 0.7, Danceability: 0.6, Acousticness: 0.2},
			want:    "Upbeat Party",
		},
		{
			name:    "high energy low valence",
			profile: Profile{Energy: 0.8, Valence: 0.3, Danceability: 0.6, Acousticness: 0.2},
			want:    "Intense & Dark",
		},
		{
			name:    "low energy high valence",
			profile: Profile{Energy: 0.4, Valence: 0.7, Danceability: 0.5, Acousticness: 0.3},
			want:    "Chill & Happy",
		},
		{
			name:    "low energy low valence",
			profile: Profile{Energy: 0.3, Valence: 0.3, Danceability: 0.4, Acousticness: 0.4},
			want:    "Reflective & Melancholy",
		},
		{
			name:    "high acousticness adds modifier",
			profile: Profile{Energy: 0.4, Valence: 0.7, Danceability: 0.5, Acousticness: 0.8},
			want:    "Chill & Happy (Acoustic)",
		},
		{
			name:    "boundary energy exactly 0.6 is low",
			profile: Profile{Energy: 0.6, Valence: 0.7, Danceability: 0.5, Acousticness: 0.2},
			want:    "Chill & Happy",
		},
		{
			name:    "boundary valence exactly 0.5 is low",
			profile: Profile{Energy: 0.8, Valence: 0.5, Danceability: 0.6, Acousticness: 0.2},
			want:    "Intense & Dark",
		},
		{
			name:    "boundary acousticness exactly 0.6 no modifier",
			profile: Profile{Energy: 0.8, Valence: 0.7, Danceability: 0.6, Acousticness: 0.6},
			want:    "Upbeat Party",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.Category()
			if got.Name != tt.want {
				t.Errorf("Category().Name = %q, want %q", got.Name, tt.want)
			}
			if got.Description == "" {
				t.Error("Description should not be empty")
			}
			if len(got.Seeds) == 0 || len(got.Seeds) > 5 {
				t.Errorf("Seeds = %v, want 1-5 genres", got.Seeds)
			}
		})
	}
}

func TestCanonicalCategories(t *testing.T) {
	tests := []struct {
		emotion Emotion
		want    string
	}{
		{Joy, "Upbeat Party"},
		{Sadness, "Reflective & Melancholy (Acoustic)"},
		{Anger, "Intense & Dark"},
		{Fear, "Intense & Dark"},
		{Surprise, "Upbeat Party"},
		{Neutral, "Reflective & Melancholy"},
	}

	for _, tt := range tests {
		t.Run(tt.emotion.String(), func(t *testing.T) {
			p, _ := Canonical(tt.emotion)
			if got := p.Category().Name; got != tt.want {
				t.Errorf("Category().Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAcousticSeedsDoNotAlias(t *testing.T) {
	acoustic := Profile{Energy: 0.4, Valence: 0.7, Acousticness: 0.8}.Category()
	plain := Profile{Energy: 0.4, Valence: 0.7, Acousticness: 0.1}.Category()

	if acoustic.Seeds[0] != "acoustic" {
		t.Errorf("acoustic seeds = %v, want acoustic first", acoustic.Seeds)
	}
	if plain.Seeds[0] == "acoustic" {
		t.Errorf("plain seeds = %v, should not start with acoustic", plain.Seeds)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		scores   []Score
		contains []string
	}{
		{
			name:     "dominant joy",
			scores:   []Score{{Joy, 0.9}, {Sadness, 0.1}},
			contains: []string{"Mostly joy", "upbeat party", "BPM"},
		},
		{
			name:     "no signal",
			scores:   nil,
			contains: []string{"No clear emotion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.scores, Map(tt.scores))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Describe() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}
