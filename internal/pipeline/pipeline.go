// Package pipeline runs one video through extraction, transcription, emotion
// classification, mood mapping and recommendation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/emotion"
	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/media"
	"github.com/justestif/resonance/internal/metrics"
	"github.com/justestif/resonance/internal/mood"
	"github.com/justestif/resonance/internal/recommend"
	"github.com/justestif/resonance/internal/transcribe"
)

// Stage errors. The web layer turns these into user-visible messages.
var (
	ErrExtraction     = errors.New("audio extraction failed")
	ErrTranscription  = errors.New("transcription failed")
	ErrRecommendation = errors.New("recommendation failed")
)

// NoSpeechNotice is attached to results whose transcript came back empty.
const NoSpeechNotice = "No speech detected in the video, so a neutral mood was used."

// Event reports stage progress as a percentage.
type Event struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// AudioExtractor pulls a speech track out of a video file.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, outputPath string) error
}

// Recommender turns a query into tracks.
type Recommender interface {
	Recommend(ctx context.Context, q recommend.Query) ([]recommend.Track, error)
}

// Analysis is the mood read of a transcript. It never depends on remote services
// beyond the classifier.
type Analysis struct {
	Emotions []mood.Score  `json:"emotions"`
	Profile  mood.Profile  `json:"profile"`
	Category mood.Category `json:"-"`
	Mood     string        `json:"mood"`
	VibeRead string        `json:"vibe_read"`
	WPM      float64       `json:"wpm"`
	Notice   string        `json:"notice,omitempty"`
}

// Result is the outcome of a full run.
type Result struct {
	Analysis
	Transcript string            `json:"transcript"`
	Language   string            `json:"language,omitempty"`
	Duration   float64           `json:"duration"`
	Tracks     []recommend.Track `json:"tracks"`
}

// Pipeline wires the stages together. It is safe for concurrent use as long as
// its collaborators are.
type Pipeline struct {
	extractor   AudioExtractor
	transcriber transcribe.Backend
	classifier  emotion.Classifier
	recommender Recommender
	mapper      mood.Mapper
	defaults    recommend.Defaults
	workDir     string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecommender enables the recommendation stage.
func WithRecommender(r Recommender) Option {
	return func(p *Pipeline) { p.recommender = r }
}

// WithMapper overrides the default mapper thresholds.
func WithMapper(m mood.Mapper) Option {
	return func(p *Pipeline) { p.mapper = m }
}

// WithDefaults sets the query defaults.
func WithDefaults(d recommend.Defaults) Option {
	return func(p *Pipeline) { p.defaults = d }
}

// WithWorkDir sets where temporary audio files are written.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) { p.workDir = dir }
}

// New creates a Pipeline. Without a recommender, Run stops after the mood read.
func New(extractor AudioExtractor, transcriber transcribe.Backend, classifier emotion.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   extractor,
		transcriber: transcriber,
		classifier:  classifier,
		mapper:      mood.DefaultMapper(),
		defaults:    recommend.StandardDefaults(),
		workDir:     os.TempDir(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one video. On a recommendation failure the returned result
// still carries the transcript and mood.
func (p *Pipeline) Run(ctx context.Context, videoPath string, progress func(Event)) (res *Result, err error) {
	if progress == nil {
		progress = func(Event) {}
	}
	log := logging.Logger.WithField("video", filepath.Base(videoPath))
	defer func() {
		if err != nil {
			metrics.CountAnalysis(metrics.OutcomeError)
			log.WithError(err).Warn("Analysis failed")
			return
		}
		metrics.CountAnalysis(metrics.OutcomeSuccess)
	}()

	progress(Event{Progress: 8, Message: "Extracting audio..."})
	audioPath := filepath.Join(p.workDir, uuid.NewString()+".wav")
	defer os.Remove(audioPath)

	stop := metrics.Timer(metrics.StageExtract)
	err = p.extractor.Extract(ctx, videoPath, audioPath)
	stop()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	progress(Event{Progress: 30, Message: "Transcribing..."})
	stop = metrics.Timer(metrics.StageTranscribe)
	tr, err := p.transcriber.Transcribe(ctx, audioPath)
	stop()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	duration := tr.Duration
	if duration <= 0 {
		if d, derr := media.WAVDuration(audioPath); derr == nil {
			duration = d
		}
	}

	progress(Event{Progress: 45, Message: "Analyzing vibe..."})
	text := tr.Text()
	analysis := p.Analyze(ctx, text, duration)

	res = &Result{
		Analysis:   analysis,
		Transcript: text,
		Language:   tr.Language,
		Duration:   duration.Seconds(),
		Tracks:     []recommend.Track{},
	}

	log.WithFields(logrus.Fields{
		"words":    transcribe.CountWords(text),
		"duration": duration.Round(time.Millisecond),
		"mood":     analysis.Mood,
	}).Info("Mood read complete")

	if p.recommender == nil {
		return res, nil
	}

	progress(Event{Progress: 78, Message: "Finding matching songs..."})
	tracks, err := p.recommend(ctx, analysis, nil)
	if err != nil {
		return res, err
	}
	res.Tracks = tracks
	return res, nil
}

// Analyze classifies a transcript and maps it to a mood profile. It never
// fails: classifier errors and empty transcripts fall back to neutral.
func (p *Pipeline) Analyze(ctx context.Context, transcript string, duration time.Duration) Analysis {
	stop := metrics.Timer(metrics.StageClassify)
	defer stop()

	var a Analysis
	if transcribe.CountWords(transcript) == 0 {
		a.Emotions = []mood.Score{{Emotion: mood.Neutral, Strength: 1}}
		a.Notice = NoSpeechNotice
	} else {
		scores, err := p.classifier.Classify(ctx, transcript)
		if err != nil {
			logging.Logger.WithError(err).Warn("Emotion classification failed, using neutral")
			scores = []mood.Score{{Emotion: mood.Neutral, Strength: 1}}
		}
		a.Emotions = mood.Sanitize(scores)
	}

	a.WPM = transcribe.WordsPerMinute(transcript, duration)
	a.Profile = mood.ApplyPacing(p.mapper.Map(a.Emotions), a.WPM)
	a.Category = a.Profile.Category()
	a.Mood = a.Category.Name
	a.VibeRead = mood.Describe(a.Emotions, a.Profile)

	metrics.CountCategory(a.Mood)
	return a
}

// Reroll produces a fresh set of tracks for a transcript, skipping the given
// track IDs.
func (p *Pipeline) Reroll(ctx context.Context, transcript string, duration time.Duration, exclude []string) (*Result, error) {
	analysis := p.Analyze(ctx, transcript, duration)
	res := &Result{
		Analysis:   analysis,
		Transcript: transcript,
		Duration:   duration.Seconds(),
		Tracks:     []recommend.Track{},
	}
	if p.recommender == nil {
		return res, fmt.Errorf("%w: %w", ErrRecommendation, recommend.ErrNoProvider)
	}

	tracks, err := p.recommend(ctx, analysis, exclude)
	if err != nil {
		return res, err
	}
	res.Tracks = tracks
	return res, nil
}

func (p *Pipeline) recommend(ctx context.Context, a Analysis, exclude []string) ([]recommend.Track, error) {
	stop := metrics.Timer(metrics.StageRecommend)
	defer stop()

	q := recommend.NewQuery(a.Profile, p.defaults).WithExclude(exclude)
	tracks, err := p.recommender.Recommend(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecommendation, err)
	}
	if tracks == nil {
		tracks = []recommend.Track{}
	}
	return tracks, nil
}
