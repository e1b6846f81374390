// Package instrumental finds and downloads instrumental versions of songs so
// they can be laid under a video.
package instrumental

import (
	"math"
	"strings"
	"time"
)

var (
	goodKeywords = []string{"instrumental", "karaoke", "no vocals", "backing track", "minus one"}
	badKeywords  = []string{
		"lyrics", "lyric video", "official video", "official music video",
		"live", "cover", "remix", "reaction", "full album",
	}
)

// Entry is one flat search result from yt-dlp.
type Entry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	WebpageURL string  `json:"webpage_url"`
	Duration   float64 `json:"duration"` // seconds, 0 when unknown
}

// Score rates how likely e is a clean instrumental of song by artist.
// The bool is false when the entry is disqualified: every song word of three
// or more letters must appear in the title.
func Score(e Entry, song, artist string, target time.Duration) (float64, bool) {
	title := strings.ToLower(e.Title)

	for _, word := range strings.Fields(strings.ToLower(song)) {
		if len(word) >= 3 && !strings.Contains(title, word) {
			return 0, false
		}
	}

	var score float64
	for _, word := range strings.Fields(strings.ToLower(artist)) {
		if len(word) >= 3 && strings.Contains(title, word) {
			score += 20
			break
		}
	}

	for _, kw := range goodKeywords {
		if strings.Contains(title, kw) {
			score += 15
		}
	}
	for _, kw := range badKeywords {
		if strings.Contains(title, kw) {
			score -= 10
		}
	}

	if target > 0 && e.Duration > 0 {
		diff := math.Abs(e.Duration - target.Seconds())
		score += math.Max(0, 30-diff) * 1.5
	}

	return score, true
}
