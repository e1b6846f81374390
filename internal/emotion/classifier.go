// Package emotion detects emotions in transcript text.
package emotion

import (
	"context"

	"github.com/justestif/resonance/internal/mood"
)

// Classifier scores the emotions expressed in a piece of text. Implementations
// never return an empty slice without an error: text with no detectable
// emotion scores as {neutral: 1}.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]mood.Score, error)
}

func neutralOnly() []mood.Score {
	return []mood.Score{{Emotion: mood.Neutral, Strength: 1}}
}
