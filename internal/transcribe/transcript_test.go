package transcribe

import (
	"math"
	"testing"
	"time"
)

func TestTranscriptText(t *testing.T) {
	tr := Transcript{
		Duration: 30 * time.Second,
		Segments: []Segment{
			{Start: 0, End: 2, Text: "  D students for sure "},
			{Start: 2, End: 3, Text: ""},
			{Start: 3, End: 6, Text: "end up being millionaires.\n"},
		},
	}

	if got, want := tr.Text(), "D students for sure end up being millionaires."; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got := tr.WordCount(); got != 8 {
		t.Errorf("WordCount() = %d, want 8", got)
	}
	if got := tr.WordsPerMinute(); math.Abs(got-16) > 1e-9 {
		t.Errorf("WordsPerMinute() = %v, want 16", got)
	}
	if tr.Empty() {
		t.Error("Empty() = true, want false")
	}
}

func TestTranscriptEmpty(t *testing.T) {
	tests := []struct {
		name string
		tr   Transcript
	}{
		{"no segments", Transcript{}},
		{"blank segments", Transcript{Segments: []Segment{{Text: " "}, {Text: "\t"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.tr.Empty() {
				t.Error("Empty() = false, want true")
			}
			if got := tt.tr.WordsPerMinute(); got != 0 {
				t.Errorf("WordsPerMinute() = %v, want 0", got)
			}
		})
	}
}

func TestWordsPerMinuteUnknownDuration(t *testing.T) {
	if got := WordsPerMinute("one two three", 0); got != 0 {
		t.Errorf("WordsPerMinute() = %v, want 0", got)
	}
	if got := WordsPerMinute("one two three", 90*time.Second); got != 2 {
		t.Errorf("WordsPerMinute() = %v, want 2", got)
	}
}
