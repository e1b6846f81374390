package cli

import (
	"fmt"
	"strings"

	"github.com/justestif/resonance/internal/mood"
	"github.com/justestif/resonance/internal/pipeline"
	"github.com/justestif/resonance/internal/recommend"
)

// FormatProfile returns the profile as aligned "name value" lines.
func FormatProfile(p mood.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  valence       %.2f\n", p.Valence)
	fmt.Fprintf(&sb, "  energy        %.2f\n", p.Energy)
	fmt.Fprintf(&sb, "  danceability  %.2f\n", p.Danceability)
	fmt.Fprintf(&sb, "  acousticness  %.2f\n", p.Acousticness)
	fmt.Fprintf(&sb, "  tempo         %.0f-%.0f BPM\n", p.TempoMin, p.TempoMax)
	return sb.String()
}

// FormatAnalysis summarizes the mood read: category, vibe read, detected
// emotions and the profile.
func FormatAnalysis(a pipeline.Analysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Mood: %s\n", a.Mood))
	if a.VibeRead != "" {
		sb.WriteString(fmt.Sprintf("Vibe read: %s\n", a.VibeRead))
	}
	if a.Notice != "" {
		sb.WriteString(fmt.Sprintf("Note: %s\n", a.Notice))
	}

	if len(a.Emotions) > 0 {
		labels := make([]string, 0, len(a.Emotions))
		for _, s := range a.Emotions {
			labels = append(labels, fmt.Sprintf("%s %.0f%%", s.Emotion, s.Strength*100))
		}
		sb.WriteString(fmt.Sprintf("Emotions: %s\n", strings.Join(labels, ", ")))
	}
	if a.WPM > 0 {
		sb.WriteString(fmt.Sprintf("Pace: %.0f words per minute\n", a.WPM))
	}

	sb.WriteString("\nProfile:\n")
	sb.WriteString(FormatProfile(a.Profile))
	return sb.String()
}

// FormatResult returns the analysis followed by the suggested tracks.
func FormatResult(res *pipeline.Result) string {
	var sb strings.Builder
	sb.WriteString(FormatAnalysis(res.Analysis))
	sb.WriteString("\n")
	sb.WriteString(formatTracks(res.Tracks))
	return sb.String()
}

func formatTracks(tracks []recommend.Track) string {
	if len(tracks) == 0 {
		return "No tracks suggested\n"
	}

	var sb strings.Builder
	trackWord := "track"
	if len(tracks) > 1 {
		trackWord = "tracks"
	}
	sb.WriteString(fmt.Sprintf("Suggested %d %s:\n", len(tracks), trackWord))

	for i, t := range tracks {
		sb.WriteString(fmt.Sprintf("  %d. \"%s\" - %s", i+1, t.Name, t.Artist))
		if t.Genre != "" {
			sb.WriteString(fmt.Sprintf(" [%s]", t.Genre))
		}
		sb.WriteString("\n")
		if t.Reason != "" {
			sb.WriteString(fmt.Sprintf("     %s\n", t.Reason))
		}
		if t.URL != "" {
			sb.WriteString(fmt.Sprintf("     %s\n", t.URL))
		}
	}
	return sb.String()
}
