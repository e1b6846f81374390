package media

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// MixRequest describes an instrumental overlay.
type MixRequest struct {
	VideoPath   string
	AudioPath   string
	OutputPath  string
	Start       time.Duration // offset into the instrumental
	VideoVolume float64
	MusicVolume float64
}

// Mixer lays an instrumental under a video's own audio.
type Mixer struct {
	ffmpegPath string
	runner     CommandRunner
	prober     *Prober
}

// NewMixer creates a Mixer. The prober is used to size the music track to the video.
func NewMixer(prober *Prober, opts ...ExtractorOption) *Mixer {
	e := NewExtractor(opts...)
	return &Mixer{ffmpegPath: e.ffmpegPath, runner: e.runner, prober: prober}
}

// Mix writes the mixed video to req.OutputPath. Video is stream-copied.
func (m *Mixer) Mix(ctx context.Context, req MixRequest) error {
	info, err := m.prober.Probe(ctx, req.VideoPath)
	if err != nil {
		return fmt.Errorf("probe video: %w", err)
	}

	args := []string{
		"-y",
		"-i", req.VideoPath,
		"-i", req.AudioPath,
		"-filter_complex", filterComplex(info, req),
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-shortest",
		req.OutputPath,
	}

	if err := m.runner.Run(ctx, m.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg mix failed: %w", err)
	}
	return nil
}

func filterComplex(info ProbeResult, req MixRequest) string {
	music := fmt.Sprintf("[1:a]atrim=start=%s:duration=%s,asetpts=PTS-STARTPTS,volume=%s[ma]",
		seconds(req.Start), seconds(info.Duration), formatFloat(req.MusicVolume))

	if info.HasAudio && req.VideoVolume > 0 {
		return fmt.Sprintf("[0:a]volume=%s[va]; %s; [va][ma]amix=inputs=2:duration=first:normalize=0[aout]",
			formatFloat(req.VideoVolume), music)
	}
	return music + "; [ma]anull[aout]"
}

func seconds(d time.Duration) string {
	return formatFloat(d.Seconds())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
