// Package steps implements the godog step definitions.
package steps

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/justestif/resonance/internal/mood"
)

const tolerance = 1e-9

type moodContext struct {
	mapper  mood.Mapper
	scores  []mood.Score
	profile mood.Profile
	runs    []mood.Profile
}

// InitializeMoodScenario registers the mapper steps with fresh state.
func InitializeMoodScenario(ctx *godog.ScenarioContext) {
	m := &moodContext{mapper: mood.DefaultMapper()}

	ctx.Step(`^the default mapper$`, m.theDefaultMapper)
	ctx.Step(`^a mapper with confidence threshold ([\d.]+) and dominance threshold ([\d.]+)$`, m.aMapperWithThresholds)
	ctx.Step(`^the emotion scores:$`, m.theEmotionScores)
	ctx.Step(`^no emotion scores$`, m.noEmotionScores)
	ctx.Step(`^I map the scores$`, m.iMapTheScores)
	ctx.Step(`^I map the scores (\d+) times$`, m.iMapTheScoresNTimes)
	ctx.Step(`^the profile should be:$`, m.theProfileShouldBe)
	ctx.Step(`^the profile should equal the canonical "([^"]*)" profile$`, m.theProfileShouldEqualCanonical)
	ctx.Step(`^the profile should be neutral$`, m.theProfileShouldBeNeutral)
	ctx.Step(`^every attribute should be within its valid range$`, m.everyAttributeInRange)
	ctx.Step(`^the mood should be "([^"]*)"$`, m.theMoodShouldBe)
	ctx.Step(`^every run should return the same profile$`, m.everyRunSame)
}

func (m *moodContext) theDefaultMapper() error {
	m.mapper = mood.DefaultMapper()
	return nil
}

func (m *moodContext) aMapperWithThresholds(confidence, dominance float64) error {
	m.mapper = mood.Mapper{ConfidenceThreshold: confidence, DominanceThreshold: dominance}
	return nil
}

func (m *moodContext) theEmotionScores(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("row %d: want label and strength", i)
		}
		strength, err := strconv.ParseFloat(row.Cells[1].Value, 64)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		m.scores = append(m.scores, mood.Score{
			Emotion:  mood.ParseEmotion(row.Cells[0].Value),
			Strength: strength,
		})
	}
	return nil
}

func (m *moodContext) noEmotionScores() error {
	m.scores = nil
	return nil
}

func (m *moodContext) iMapTheScores() error {
	m.profile = m.mapper.Map(m.scores)
	return nil
}

func (m *moodContext) iMapTheScoresNTimes(n int) error {
	m.runs = make([]mood.Profile, n)
	for i := range m.runs {
		m.runs[i] = m.mapper.Map(m.scores)
	}
	return nil
}

func (m *moodContext) theProfileShouldBe(table *godog.Table) error {
	fields := map[string]float64{
		"valence":      m.profile.Valence,
		"energy":       m.profile.Energy,
		"danceability": m.profile.Danceability,
		"acousticness": m.profile.Acousticness,
		"tempo_min":    m.profile.TempoMin,
		"tempo_max":    m.profile.TempoMax,
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		name := row.Cells[0].Value
		got, ok := fields[name]
		if !ok {
			return fmt.Errorf("unknown attribute %q", name)
		}
		want, err := strconv.ParseFloat(row.Cells[1].Value, 64)
		if err != nil {
			return err
		}
		if math.Abs(got-want) > tolerance {
			return fmt.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	return nil
}

func (m *moodContext) theProfileShouldEqualCanonical(label string) error {
	want, ok := mood.Canonical(mood.ParseEmotion(label))
	if !ok {
		return fmt.Errorf("no canonical profile for %q", label)
	}
	if m.profile != want {
		return fmt.Errorf("profile = %+v, want %+v", m.profile, want)
	}
	return nil
}

func (m *moodContext) theProfileShouldBeNeutral() error {
	if m.profile != mood.NeutralProfile() {
		return fmt.Errorf("profile = %+v, want neutral", m.profile)
	}
	return nil
}

func (m *moodContext) everyAttributeInRange() error {
	if !m.profile.InRange() {
		return fmt.Errorf("profile %+v out of range", m.profile)
	}
	return nil
}

func (m *moodContext) theMoodShouldBe(name string) error {
	if got := m.profile.Category().Name; got != name {
		return fmt.Errorf("mood = %q, want %q", got, name)
	}
	return nil
}

func (m *moodContext) everyRunSame() error {
	for i, p := range m.runs {
		if p != m.runs[0] {
			return fmt.Errorf("run %d: %+v differs from %+v", i, p, m.runs[0])
		}
	}
	return nil
}
