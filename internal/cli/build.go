package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"

	"github.com/justestif/resonance/internal/auth"
	"github.com/justestif/resonance/internal/config"
	"github.com/justestif/resonance/internal/emotion"
	"github.com/justestif/resonance/internal/lastfm"
	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/media"
	"github.com/justestif/resonance/internal/mood"
	"github.com/justestif/resonance/internal/pipeline"
	"github.com/justestif/resonance/internal/recommend"
	"github.com/justestif/resonance/internal/spotify"
	"github.com/justestif/resonance/internal/transcribe"
)

// checkConfig validates cfg. Missing Spotify credentials only disable
// recommendations, so they are logged rather than returned.
func checkConfig(cfg *config.Config) error {
	err := cfg.Validate()
	if err == nil {
		return nil
	}
	if errors.Is(err, config.ErrInvalid) {
		return err
	}
	logging.Logger.Warn("Spotify credentials not set; song recommendations are disabled")
	return nil
}

func mapperFor(cfg *config.Config) mood.Mapper {
	return mood.Mapper{
		ConfidenceThreshold: cfg.Mood.ConfidenceThreshold,
		DominanceThreshold:  cfg.Mood.DominanceThreshold,
	}
}

func openAIClient(cfg *config.Config) *openai.Client {
	oc := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		oc.BaseURL = cfg.OpenAI.BaseURL
	}
	return openai.NewClientWithConfig(oc)
}

func newTranscriber(cfg *config.Config) (transcribe.Backend, error) {
	switch cfg.Transcribe.Backend {
	case config.BackendFasterWhisper:
		return transcribe.NewFasterWhisper(
			transcribe.WithPython(cfg.Transcribe.Python),
			transcribe.WithModel(cfg.Transcribe.Model),
			transcribe.WithDevice(cfg.Transcribe.Device),
		), nil
	case config.BackendOpenAI:
		return transcribe.NewOpenAI(openAIClient(cfg), cfg.OpenAI.TranscribeModel), nil
	default:
		return nil, fmt.Errorf("%w: unknown transcribe.backend %q", config.ErrInvalid, cfg.Transcribe.Backend)
	}
}

func newClassifier(cfg *config.Config) (emotion.Classifier, error) {
	switch cfg.Emotion.Classifier {
	case config.BackendLexicon:
		return emotion.NewLexicon(), nil
	case config.BackendOpenAI:
		return emotion.NewOpenAI(openAIClient(cfg), emotion.WithModel(cfg.OpenAI.ChatModel)), nil
	default:
		return nil, fmt.Errorf("%w: unknown emotion.classifier %q", config.ErrInvalid, cfg.Emotion.Classifier)
	}
}

// newRecommender wires the Spotify app client, and Last.fm tags when a key
// is set. It returns nil when Spotify credentials are missing.
func newRecommender(ctx context.Context, cfg *config.Config) (*recommend.Service, error) {
	if !cfg.HasSpotify() {
		return nil, nil
	}

	var opts []auth.Option
	if cfg.Spotify.CacheToken {
		cache, err := auth.DefaultTokenCache()
		if err != nil {
			logging.Logger.WithError(err).Warn("Token cache unavailable")
		} else {
			opts = append(opts, auth.WithTokenCache(cache))
		}
	}

	creds, err := auth.NewClientCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, opts...)
	if err != nil {
		return nil, err
	}
	client := spotify.NewFromHTTP(oauth2.NewClient(ctx, creds), "")

	svcOpts := []recommend.ServiceOption{
		recommend.WithGenres(client),
		recommend.WithFeatures(client),
	}
	if cfg.LastFM.APIKey != "" {
		tags, err := lastfm.NewClient(cfg.LastFM.APIKey)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, recommend.WithTags(tags))
	}

	return recommend.NewService(client, svcOpts...), nil
}

// newPipeline assembles the analysis pipeline from cfg.
func newPipeline(ctx context.Context, cfg *config.Config, withRecommendations bool) (*pipeline.Pipeline, error) {
	transcriber, err := newTranscriber(cfg)
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithMapper(mapperFor(cfg)),
		pipeline.WithDefaults(recommend.Defaults{
			Limit:    cfg.Spotify.Limit,
			Market:   cfg.Spotify.Market,
			PoolSize: cfg.Spotify.PoolSize,
		}),
		pipeline.WithWorkDir(cfg.Server.UploadDir),
	}

	if withRecommendations {
		svc, err := newRecommender(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if svc != nil {
			opts = append(opts, pipeline.WithRecommender(svc))
		}
	}

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return pipeline.New(newExtractor(cfg), transcriber, classifier, opts...), nil
}

func newExtractor(cfg *config.Config) *media.Extractor {
	return media.NewExtractor(media.WithFFmpegPath(cfg.Media.FFmpegPath))
}
