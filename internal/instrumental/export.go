package instrumental

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/media"
)

// Volume bounds accepted by Export.
const (
	MaxVolume          = 2.0
	DefaultVideoVolume = 1.0
	DefaultMusicVolume = 0.3
)

// ErrInvalidRequest is returned for requests missing a song or a video.
var ErrInvalidRequest = errors.New("invalid export request")

// Searcher finds and downloads an instrumental.
type Searcher interface {
	Find(ctx context.Context, song, artist string, target time.Duration) (Entry, error)
	Download(ctx context.Context, e Entry) (string, error)
}

// VideoMixer overlays an audio file on a video.
type VideoMixer interface {
	Mix(ctx context.Context, req media.MixRequest) error
}

// ExportRequest describes one export.
type ExportRequest struct {
	VideoPath   string
	Song        string
	Artist      string
	Duration    time.Duration // length of the original song, for scoring
	Start       time.Duration // where in the instrumental to start
	VideoVolume float64
	MusicVolume float64
}

// Exporter produces a video with an instrumental laid under the speech.
type Exporter struct {
	searcher Searcher
	mixer    VideoMixer
	dir      string
}

// NewExporter creates an Exporter writing into dir.
func NewExporter(s Searcher, m VideoMixer, dir string) *Exporter {
	return &Exporter{searcher: s, mixer: m, dir: dir}
}

// Export finds the instrumental, mixes it in and returns the output path.
// The downloaded mp3 is removed afterwards.
func (x *Exporter) Export(ctx context.Context, req ExportRequest) (string, error) {
	if req.VideoPath == "" || req.Song == "" {
		return "", fmt.Errorf("%w: video and song are required", ErrInvalidRequest)
	}

	entry, err := x.searcher.Find(ctx, req.Song, req.Artist, req.Duration)
	if err != nil {
		return "", err
	}

	audioPath, err := x.searcher.Download(ctx, entry)
	if err != nil {
		return "", err
	}
	defer os.Remove(audioPath)

	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	out := filepath.Join(x.dir, uuid.NewString()[:12]+".mp4")

	if err := x.mixer.Mix(ctx, media.MixRequest{
		VideoPath:   req.VideoPath,
		AudioPath:   audioPath,
		OutputPath:  out,
		Start:       max(req.Start, 0),
		VideoVolume: clampVolume(req.VideoVolume),
		MusicVolume: clampVolume(req.MusicVolume),
	}); err != nil {
		return "", err
	}

	logging.Logger.WithFields(logrus.Fields{
		"song":   req.Song,
		"output": out,
	}).Info("Export complete")
	return out, nil
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), MaxVolume)
}
