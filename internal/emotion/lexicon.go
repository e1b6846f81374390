package emotion

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/justestif/resonance/internal/mood"
)

var defaultWords = map[mood.Emotion][]string{
	mood.Joy: {
		"happy", "happiness", "joy", "joyful", "love", "loved", "loving", "great", "amazing",
		"awesome", "excited", "exciting", "fun", "laugh", "laughing", "glad", "grateful",
		"thankful", "wonderful", "fantastic", "beautiful", "celebrate", "win", "winning",
		"proud", "delighted", "smile", "best", "enjoy", "blessed",
	},
	mood.Sadness: {
		"sad", "sadness", "cry", "crying", "cried", "tears", "lonely", "alone", "miss",
		"missed", "lost", "loss", "grief", "grieving", "heartbroken", "hurt", "pain",
		"depressed", "depression", "sorry", "regret", "died", "death", "funeral", "broken",
		"hopeless", "bottom", "empty",
	},
	mood.Anger: {
		"angry", "anger", "mad", "furious", "hate", "hated", "rage", "annoyed", "annoying",
		"frustrated", "frustrating", "sick", "unfair", "stupid", "damn", "pissed", "fight",
		"fighting", "yell", "yelling", "screw", "ridiculous", "outrageous",
	},
	mood.Fear: {
		"afraid", "scared", "fear", "terrified", "anxious", "anxiety", "worried", "worry",
		"nervous", "panic", "danger", "dangerous", "risk", "threat", "scary", "dread",
		"uncertain", "unsafe", "arrested", "kill",
	},
	mood.Surprise: {
		"wow", "surprised", "surprise", "surprising", "shocked", "shocking", "unexpected",
		"suddenly", "unbelievable", "incredible", "crazy", "insane", "whoa", "omg",
		"realized", "discovered", "secret",
	},
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "dont": true, "didn't": true,
	"didnt": true, "isn't": true, "isnt": true, "wasn't": true, "wasnt": true,
	"aren't": true, "won't": true, "can't": true, "cant": true, "without": true,
	"hardly": true, "nobody": true, "nothing": true,
}

// Lexicon is a local, deterministic classifier that counts emotion words.
// A word directly preceded by a negator is not counted.
type Lexicon struct {
	words map[string]mood.Emotion
}

// NewLexicon returns a Lexicon with the built-in word list.
func NewLexicon() *Lexicon {
	l := &Lexicon{words: make(map[string]mood.Emotion)}
	for e, words := range defaultWords {
		for _, w := range words {
			l.words[w] = e
		}
	}
	return l
}

// Add maps extra words to an emotion. Unknown emotions are ignored.
func (l *Lexicon) Add(e mood.Emotion, words ...string) {
	if !e.Known() {
		return
	}
	for _, w := range words {
		l.words[strings.ToLower(w)] = e
	}
}

// Classify returns each detected emotion with its share of all hits, strongest
// first. Ties are ordered by label.
func (l *Lexicon) Classify(_ context.Context, text string) ([]mood.Score, error) {
	counts := make(map[mood.Emotion]int)
	total := 0

	tokens := tokenize(text)
	for i, tok := range tokens {
		e, ok := l.words[tok]
		if !ok {
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			continue
		}
		counts[e]++
		total++
	}

	if total == 0 {
		return neutralOnly(), nil
	}

	scores := make([]mood.Score, 0, len(counts))
	for e, n := range counts {
		scores = append(scores, mood.Score{Emotion: e, Strength: float64(n) / float64(total)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Strength != scores[j].Strength {
			return scores[i].Strength > scores[j].Strength
		}
		return scores[i].Emotion.String() < scores[j].Emotion.String()
	})
	return scores, nil
}

// tokenize lower-cases text and splits it into words, keeping apostrophes.
func tokenize(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "’", "'")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
