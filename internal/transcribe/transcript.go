// Package transcribe turns extracted speech audio into text.
package transcribe

import (
	"context"
	"strings"
	"time"
)

// Segment is a timed piece of transcribed speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript bundles the segments of one recording.
type Transcript struct {
	Language string        `json:"language"`
	Duration time.Duration `json:"duration"`
	Segments []Segment     `json:"segments"`
}

// Backend is a pluggable transcription backend.
type Backend interface {
	Transcribe(ctx context.Context, audioPath string) (Transcript, error)
}

// Text joins the trimmed segment texts with single spaces.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if text := strings.TrimSpace(s.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Empty reports whether no speech was recognised.
func (t Transcript) Empty() bool {
	return t.Text() == ""
}

// WordCount counts whitespace-separated words in the transcript.
func (t Transcript) WordCount() int {
	return CountWords(t.Text())
}

// WordsPerMinute is the speaking rate over the whole duration, or 0 when
// the duration is unknown.
func (t Transcript) WordsPerMinute() float64 {
	return WordsPerMinute(t.Text(), t.Duration)
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// WordsPerMinute computes a speaking rate for text spoken over d.
func WordsPerMinute(text string, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(CountWords(text)) / d.Minutes()
}
