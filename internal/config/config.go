// Package config loads Resonance settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "config.yaml"

// Backend names.
const (
	BackendFasterWhisper = "faster-whisper"
	BackendOpenAI        = "openai"
	BackendLexicon       = "lexicon"
)

var (
	// ErrMissingCredentials is returned when Spotify client credentials are not set.
	ErrMissingCredentials = errors.New("missing Spotify credentials: set SPOTIFY_ID and SPOTIFY_SECRET")

	// ErrInvalid wraps every other validation failure.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Spotify    SpotifyConfig    `yaml:"spotify"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Emotion    EmotionConfig    `yaml:"emotion"`
	Mood       MoodConfig       `yaml:"mood"`
	Media      MediaConfig      `yaml:"media"`
	Database   DatabaseConfig   `yaml:"database"`
	LastFM     LastFMConfig     `yaml:"lastfm"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	RedirectURI string `yaml:"redirect_uri"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	UploadDir   string `yaml:"upload_dir"`
	ExportDir   string `yaml:"export_dir"`
}

// SpotifyConfig holds API credentials and query defaults.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market"`
	Limit        int    `yaml:"limit"`
	PoolSize     int    `yaml:"pool_size"`
	CacheToken   bool   `yaml:"cache_token"`
}

// OpenAIConfig is used by the openai transcription and emotion backends.
type OpenAIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url,omitempty"`
	ChatModel       string `yaml:"chat_model"`
	TranscribeModel string `yaml:"transcribe_model"`
}

// TranscribeConfig selects and tunes the speech-to-text backend.
type TranscribeConfig struct {
	Backend string `yaml:"backend"`
	Python  string `yaml:"python"`
	Model   string `yaml:"model"`
	Device  string `yaml:"device"`
}

// EmotionConfig selects the emotion classifier.
type EmotionConfig struct {
	Classifier string `yaml:"classifier"`
}

// MoodConfig holds the mapper thresholds.
type MoodConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	DominanceThreshold  float64 `yaml:"dominance_threshold"`
}

// MediaConfig locates the external media tools.
type MediaConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	YTDLPPath   string `yaml:"ytdlp_path"`
}

// DatabaseConfig enables PostgreSQL-backed sessions when URL is set.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LastFMConfig enables the Last.fm genre fallback when APIKey is set.
type LastFMConfig struct {
	APIKey string `yaml:"api_key"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			RedirectURI: "http://127.0.0.1:8080/callback",
			MaxUploadMB: 500,
			UploadDir:   "uploads",
			ExportDir:   "exports",
		},
		Spotify: SpotifyConfig{
			Market:     "US",
			Limit:      5,
			PoolSize:   20,
			CacheToken: true,
		},
		OpenAI: OpenAIConfig{
			ChatModel:       "gpt-4o-mini",
			TranscribeModel: "whisper-1",
		},
		Transcribe: TranscribeConfig{
			Backend: BackendFasterWhisper,
			Python:  "python3",
			Model:   "base",
			Device:  "cpu",
		},
		Emotion: EmotionConfig{Classifier: BackendLexicon},
		Mood: MoodConfig{
			ConfidenceThreshold: 0.2,
			DominanceThreshold:  0.9,
		},
		Media: MediaConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			YTDLPPath:   "yt-dlp",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. A missing file at path is not an error.
// Env files are loaded into the process environment first; variables already
// set win over values in the files.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, names ...string) {
		for _, n := range names {
			if v, ok := lookup(n); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.Spotify.ClientID, "SPOTIFY_ID", "SPOTIPY_CLIENT_ID")
	str(&c.Spotify.ClientSecret, "SPOTIFY_SECRET", "SPOTIPY_CLIENT_SECRET")
	str(&c.Server.RedirectURI, "RESONANCE_REDIRECT_URI")
	str(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	str(&c.Database.URL, "DATABASE_URL")
	str(&c.LastFM.APIKey, "LASTFM_API_KEY")
	str(&c.Media.FFmpegPath, "FFMPEG_PATH")
	str(&c.Transcribe.Python, "RESONANCE_PY")
	str(&c.Log.Level, "LOG_LEVEL")

	if port, ok := lookup("PORT"); ok && port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("%w: PORT %q is not a number", ErrInvalid, port)
		}
		c.Server.Addr = "0.0.0.0:" + port
	}
	str(&c.Server.Addr, "RESONANCE_ADDR")

	return nil
}

// HasSpotify reports whether client credentials are configured.
func (c *Config) HasSpotify() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// Validate checks the configuration. Missing Spotify credentials are reported
// as ErrMissingCredentials, everything else as ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if !c.HasSpotify() {
		errs = append(errs, ErrMissingCredentials)
	}
	if c.Server.MaxUploadMB <= 0 {
		invalid("server.max_upload_mb must be positive")
	}
	if c.Spotify.Limit < 1 || c.Spotify.Limit > 100 {
		invalid("spotify.limit %d out of range 1-100", c.Spotify.Limit)
	}
	if c.Spotify.PoolSize < c.Spotify.Limit || c.Spotify.PoolSize > 100 {
		invalid("spotify.pool_size %d must be between limit and 100", c.Spotify.PoolSize)
	}
	if t := c.Mood.ConfidenceThreshold; t < 0 || t > 1 {
		invalid("mood.confidence_threshold %v out of range 0-1", t)
	}
	if t := c.Mood.DominanceThreshold; t <= 0.5 || t > 1 {
		invalid("mood.dominance_threshold %v out of range (0.5, 1]", t)
	}

	switch c.Transcribe.Backend {
	case BackendFasterWhisper:
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			invalid("transcribe.backend openai needs OPENAI_API_KEY")
		}
	default:
		invalid("unknown transcribe.backend %q", c.Transcribe.Backend)
	}

	switch c.Emotion.Classifier {
	case BackendLexicon:
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			invalid("emotion.classifier openai needs OPENAI_API_KEY")
		}
	default:
		invalid("unknown emotion.classifier %q", c.Emotion.Classifier)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		invalid("unknown log.format %q", c.Log.Format)
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML with owner-only permissions.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
