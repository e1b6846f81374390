package pipeline

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/justestif/resonance/internal/mood"
	"github.com/justestif/resonance/internal/recommend"
	"github.com/justestif/resonance/internal/transcribe"
)

type fakeExtractor struct {
	err        error
	sampleRate int
	samples    int
	outputPath string
}

func (f *fakeExtractor) Extract(_ context.Context, _, outputPath string) error {
	f.outputPath = outputPath
	if f.err != nil {
		return f.err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	rate := f.sampleRate
	if rate == 0 {
		rate = 16000
	}
	enc := wav.NewEncoder(out, rate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, f.samples),
		SourceBitDepth: 16,
	}); err != nil {
		return err
	}
	return enc.Close()
}

type fakeTranscriber struct {
	transcript transcribe.Transcript
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (transcribe.Transcript, error) {
	f.calls++
	return f.transcript, f.err
}

type fakeClassifier struct {
	scores []mood.Score
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, string) ([]mood.Score, error) {
	f.calls++
	return f.scores, f.err
}

type fakeRecommender struct {
	tracks []recommend.Track
	err    error
	query  recommend.Query
}

func (f *fakeRecommender) Recommend(_ context.Context, q recommend.Query) ([]recommend.Track, error) {
	f.query = q
	return f.tracks, f.err
}

func speech(words int, d time.Duration) transcribe.Transcript {
	return transcribe.Transcript{
		Language: "en",
		Duration: d,
		Segments: []transcribe.Segment{{Start: 0, End: d.Seconds(), Text: strings.Repeat("word ", words)}},
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("work dir not cleaned up: %d entries left", len(entries))
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecommender{tracks: []recommend.Track{{ID: "t1", Name: "Song"}}}
	p := New(
		&fakeExtractor{samples: 16000},
		&fakeTranscriber{transcript: speech(140, time.Minute)},
		&fakeClassifier{scores: []mood.Score{{Emotion: mood.Joy, Strength: 1}}},
		WithRecommender(rec),
		WithWorkDir(dir),
	)

	var events []int
	res, err := p.Run(context.Background(), "clip.mp4", func(e Event) {
		events = append(events, e.Progress)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if want := []int{8, 30, 45, 78}; !slices.Equal(events, want) {
		t.Errorf("progress = %v, want %v", events, want)
	}
	if res.Mood != "Upbeat Party" {
		t.Errorf("Mood = %q, want Upbeat Party", res.Mood)
	}
	if canon, _ := mood.Canonical(mood.Joy); res.Profile != canon {
		t.Errorf("Profile = %+v, want canonical joy", res.Profile)
	}
	if res.Duration != 60 {
		t.Errorf("Duration = %v, want 60", res.Duration)
	}
	if len(res.Tracks) != 1 || res.Tracks[0].ID != "t1" {
		t.Errorf("Tracks = %+v", res.Tracks)
	}
	if !slices.Equal(rec.query.Seeds, []string{"pop", "dance", "funk"}) {
		t.Errorf("query seeds = %v", rec.query.Seeds)
	}
	if res.VibeRead == "" {
		t.Error("VibeRead is empty")
	}
	assertEmptyDir(t, dir)
}

func TestRunStageErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name        string
		extractor   *fakeExtractor
		transcriber *fakeTranscriber
		recommender *fakeRecommender
		wantErr     error
		wantResult  bool
	}{
		{
			name:        "extraction",
			extractor:   &fakeExtractor{err: boom},
			transcriber: &fakeTranscriber{},
			recommender: &fakeRecommender{},
			wantErr:     ErrExtraction,
		},
		{
			name:        "transcription",
			extractor:   &fakeExtractor{samples: 160},
			transcriber: &fakeTranscriber{err: boom},
			recommender: &fakeRecommender{},
			wantErr:     ErrTranscription,
		},
		{
			name:        "recommendation keeps mood",
			extractor:   &fakeExtractor{samples: 160},
			transcriber: &fakeTranscriber{transcript: speech(20, 10*time.Second)},
			recommender: &fakeRecommender{err: boom},
			wantErr:     ErrRecommendation,
			wantResult:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			classifier := &fakeClassifier{scores: []mood.Score{{Emotion: mood.Sadness, Strength: 0.8}}}
			p := New(tt.extractor, tt.transcriber, classifier, WithRecommender(tt.recommender), WithWorkDir(dir))

			res, err := p.Run(context.Background(), "clip.mp4", nil)
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, boom) {
				t.Fatalf("Run() error = %v, want %v wrapping cause", err, tt.wantErr)
			}
			if tt.wantResult {
				if res == nil || res.Mood == "" {
					t.Fatalf("Run() result = %+v, want mood despite error", res)
				}
			} else if res != nil {
				t.Errorf("Run() result = %+v, want nil", res)
			}
			if errors.Is(err, ErrExtraction) && tt.transcriber.calls != 0 {
				t.Error("transcriber called after extraction failure")
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestRunEmptyTranscriptIsNeutral(t *testing.T) {
	classifier := &fakeClassifier{scores: []mood.Score{{Emotion: mood.Anger, Strength: 1}}}
	p := New(
		&fakeExtractor{samples: 16000 * 3},
		&fakeTranscriber{transcript: transcribe.Transcript{Segments: []transcribe.Segment{{Text: "   "}}}},
		classifier,
		WithWorkDir(t.TempDir()),
	)

	res, err := p.Run(context.Background(), "silent.mp4", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier called %d times for an empty transcript", classifier.calls)
	}
	if res.Profile != mood.NeutralProfile() {
		t.Errorf("Profile = %+v, want neutral", res.Profile)
	}
	if res.Notice != NoSpeechNotice {
		t.Errorf("Notice = %q", res.Notice)
	}
	// Duration falls back to the extracted WAV.
	if res.Duration < 2.9 || res.Duration > 3.1 {
		t.Errorf("Duration = %v, want about 3s", res.Duration)
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("classifier error falls back to neutral", func(t *testing.T) {
		p := New(nil, nil, &fakeClassifier{err: errors.New("rate limited")})
		a := p.Analyze(context.Background(), "some words here", 0)
		if a.Profile != mood.NeutralProfile() {
			t.Errorf("Profile = %+v, want neutral", a.Profile)
		}
	})

	t.Run("fast speech raises tempo", func(t *testing.T) {
		p := New(nil, nil, &fakeClassifier{scores: []mood.Score{{Emotion: mood.Neutral, Strength: 1}}})
		a := p.Analyze(context.Background(), strings.Repeat("go ", 200), time.Minute)
		neutral := mood.NeutralProfile()
		if a.Profile.TempoMin != neutral.TempoMin+10 {
			t.Errorf("TempoMin = %v, want %v", a.Profile.TempoMin, neutral.TempoMin+10)
		}
		if a.WPM != 200 {
			t.Errorf("WPM = %v, want 200", a.WPM)
		}
	})

	t.Run("sanitizes scores", func(t *testing.T) {
		p := New(nil, nil, &fakeClassifier{scores: []mood.Score{
			{Emotion: mood.Unknown, Strength: 1},
			{Emotion: mood.Fear, Strength: 3},
		}})
		a := p.Analyze(context.Background(), "the lights went out", 0)
		if len(a.Emotions) != 1 || a.Emotions[0].Strength != 1 {
			t.Errorf("Emotions = %+v, want single clamped fear", a.Emotions)
		}
	})
}

func TestReroll(t *testing.T) {
	rec := &fakeRecommender{tracks: []recommend.Track{{ID: "t9"}}}
	p := New(nil, nil, &fakeClassifier{scores: []mood.Score{{Emotion: mood.Sadness, Strength: 1}}}, WithRecommender(rec))

	res, err := p.Reroll(context.Background(), "i miss her", 30*time.Second, []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("Reroll() error = %v", err)
	}
	if !slices.Equal(rec.query.Exclude, []string{"t1", "t2"}) {
		t.Errorf("Exclude = %v", rec.query.Exclude)
	}
	if len(res.Tracks) != 1 || res.Tracks[0].ID != "t9" {
		t.Errorf("Tracks = %+v", res.Tracks)
	}

	noRec := New(nil, nil, &fakeClassifier{})
	if _, err := noRec.Reroll(context.Background(), "hi", 0, nil); !errors.Is(err, ErrRecommendation) {
		t.Errorf("Reroll() without recommender error = %v, want ErrRecommendation", err)
	}
}
