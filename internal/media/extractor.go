package media

import (
	"context"
	"fmt"
)

// Extractor pulls a mono 16 kHz PCM WAV track out of a video with ffmpeg.
type Extractor struct {
	ffmpegPath string
	runner     CommandRunner
}

// ExtractorOption is a functional option for configuring Extractor.
type ExtractorOption func(*Extractor)

// WithFFmpegPath sets a custom ffmpeg executable path.
func WithFFmpegPath(path string) ExtractorOption {
	return func(e *Extractor) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner CommandRunner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

// NewExtractor creates a new ffmpeg-based audio extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract writes the audio of videoPath to outputPath as speech-ready WAV.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputPath string) error {
	args := []string{
		"-i", videoPath,
		"-vn",                  // No video
		"-acodec", "pcm_s16le", // 16-bit PCM
		"-ar", "16000", // 16 kHz, what whisper models expect
		"-ac", "1", // Mono
		"-y", // Overwrite output file if it exists
		outputPath,
	}

	if err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available.
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}
