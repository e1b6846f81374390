package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrInvalidAudio is returned when a file is not decodable audio.
var ErrInvalidAudio = errors.New("invalid audio file")

// WAVDuration reads the header of a WAV file and returns its length.
func WAVDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return 0, fmt.Errorf("%s: %w", path, ErrInvalidAudio)
	}
	dur, err := d.Duration()
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", path, ErrInvalidAudio, err)
	}
	return dur, nil
}

// MP3Duration decodes the frame index of an MP3 file and returns its length.
func MP3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mp3: %w", err)
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", path, ErrInvalidAudio, err)
	}
	if d.SampleRate() <= 0 || d.Length() <= 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrInvalidAudio)
	}

	// go-mp3 always decodes to 16-bit stereo: 4 bytes per sample frame.
	frames := d.Length() / 4
	return time.Duration(frames) * time.Second / time.Duration(d.SampleRate()), nil
}

// ProbeResult is the subset of ffprobe output the mixer needs.
type ProbeResult struct {
	Duration time.Duration
	HasAudio bool
}

// Prober runs ffprobe.
type Prober struct {
	ffprobePath string
	runner      CommandRunner
}

// NewProber creates a Prober. An empty path means "ffprobe" on PATH.
func NewProber(ffprobePath string, runner CommandRunner) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if runner == nil {
		runner = &ExecCommandRunner{}
	}
	return &Prober{ffprobePath: ffprobePath, runner: runner}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// Probe returns the container duration and whether it carries an audio stream.
func (p *Prober) Probe(ctx context.Context, path string) (ProbeResult, error) {
	out, err := p.runner.Output(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return ProbeResult{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	secs, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("%s: %w: no duration", path, ErrInvalidAudio)
	}

	res := ProbeResult{Duration: time.Duration(secs * float64(time.Second))}
	for _, s := range parsed.Streams {
		if s.CodecType == "audio" {
			res.HasAudio = true
			break
		}
	}
	return res, nil
}
