// Package mood maps detected emotions onto target musical attributes.
//
// Everything in this package is pure: no I/O, no shared state. The same
// scores always produce the same Profile.
package mood

import (
	"fmt"
	"strconv"
	"strings"
)

// Emotion is a label from the fixed emotion vocabulary.
type Emotion int

// Known emotions. Unknown is the zero value and is ignored by the mapper.
const (
	Unknown Emotion = iota
	Joy
	Sadness
	Anger
	Fear
	Surprise
	Neutral

	numEmotions
)

var emotionNames = [numEmotions]string{
	Unknown:  "unknown",
	Joy:      "joy",
	Sadness:  "sadness",
	Anger:    "anger",
	Fear:     "fear",
	Surprise: "surprise",
	Neutral:  "neutral",
}

// synonyms lets classifiers and users speak a little more loosely.
var synonyms = map[string]Emotion{
	"happy":     Joy,
	"happiness": Joy,
	"excited":   Joy,
	"sad":       Sadness,
	"grief":     Sadness,
	"angry":     Anger,
	"rage":      Anger,
	"scared":    Fear,
	"afraid":    Fear,
	"anxious":   Fear,
	"surprised": Surprise,
	"shock":     Surprise,
	"calm":      Neutral,
	"none":      Neutral,
}

// Emotions returns the known emotions in table order.
func Emotions() []Emotion {
	return []Emotion{Joy, Sadness, Anger, Fear, Surprise, Neutral}
}

// ParseEmotion converts a label to an Emotion. Matching is case-insensitive.
// Labels outside the vocabulary return Unknown.
func ParseEmotion(label string) Emotion {
	label = strings.ToLower(strings.TrimSpace(label))
	for e := Joy; e < numEmotions; e++ {
		if emotionNames[e] == label {
			return e
		}
	}
	if e, ok := synonyms[label]; ok {
		return e
	}
	return Unknown
}

// Known reports whether e is part of the vocabulary.
func (e Emotion) Known() bool {
	return e > Unknown && e < numEmotions
}

func (e Emotion) String() string {
	if e < Unknown || e >= numEmotions {
		return emotionNames[Unknown]
	}
	return emotionNames[e]
}

// MarshalText encodes the emotion as its label.
func (e Emotion) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes a label. Unrecognised labels decode to Unknown.
func (e *Emotion) UnmarshalText(text []byte) error {
	*e = ParseEmotion(string(text))
	return nil
}

// Score is a detected emotion with its strength, nominally in [0, 1].
type Score struct {
	Emotion  Emotion `json:"label"`
	Strength float64 `json:"strength"`
}

// ParseScore parses "label=strength" (e.g. "joy=0.8"). A bare label means strength 1.
func ParseScore(s string) (Score, error) {
	label, raw, found := strings.Cut(s, "=")
	e := ParseEmotion(label)
	if !e.Known() {
		return Score{}, fmt.Errorf("unknown emotion %q", label)
	}
	if !found {
		return Score{Emotion: e, Strength: 1}, nil
	}
	strength, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Score{}, fmt.Errorf("invalid strength for %s: %w", e, err)
	}
	return Score{Emotion: e, Strength: strength}, nil
}
