package instrumental

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/media"
)

// GoodEnough is the score at which the search stops trying further queries.
const GoodEnough = 15

const searchResults = 5

// ErrNotFound is returned when no search result passes the title check.
var ErrNotFound = errors.New("no suitable instrumental found")

// Finder searches YouTube through yt-dlp.
type Finder struct {
	ytdlpPath string
	runner    media.CommandRunner
	dir       string
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithYTDLPPath sets the yt-dlp executable.
func WithYTDLPPath(path string) FinderOption {
	return func(f *Finder) {
		if path != "" {
			f.ytdlpPath = path
		}
	}
}

// WithRunner sets the command runner (for testing).
func WithRunner(r media.CommandRunner) FinderOption {
	return func(f *Finder) { f.runner = r }
}

// NewFinder creates a Finder that downloads into dir.
func NewFinder(dir string, opts ...FinderOption) *Finder {
	f := &Finder{
		ytdlpPath: "yt-dlp",
		runner:    &media.ExecCommandRunner{},
		dir:       dir,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Queries lists the searches tried for a song, most specific first.
func Queries(song, artist string) []string {
	return []string{
		fmt.Sprintf("%s %s instrumental no vocals", song, artist),
		fmt.Sprintf("%s %s instrumental", song, artist),
		fmt.Sprintf("%s %s karaoke", song, artist),
		fmt.Sprintf("%s instrumental", song),
	}
}

type searchResult struct {
	Entries []*Entry `json:"entries"`
}

// Find returns the best-scoring search result for the song. A failed query is
// skipped rather than aborting the search.
func (f *Finder) Find(ctx context.Context, song, artist string, target time.Duration) (Entry, error) {
	log := logging.Logger.WithFields(logrus.Fields{"song": song, "artist": artist})

	var (
		best      Entry
		bestScore = math.Inf(-1)
		found     bool
	)

	for _, q := range Queries(song, artist) {
		entries, err := f.search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return Entry{}, ctx.Err()
			}
			log.WithError(err).WithField("query", q).Debug("Search failed")
			continue
		}

		for _, e := range entries {
			if e == nil {
				continue
			}
			score, ok := Score(*e, song, artist, target)
			if !ok {
				continue
			}
			if score > bestScore {
				best, bestScore, found = *e, score, true
			}
		}

		if found && bestScore >= GoodEnough {
			break
		}
	}

	if !found {
		return Entry{}, fmt.Errorf("%w for %q by %q", ErrNotFound, song, artist)
	}

	log.WithFields(logrus.Fields{"title": best.Title, "score": bestScore}).Info("Instrumental selected")
	return best, nil
}

func (f *Finder) search(ctx context.Context, query string) ([]*Entry, error) {
	out, err := f.runner.Output(ctx, f.ytdlpPath,
		"--flat-playlist",
		"--dump-single-json",
		"--no-warnings",
		fmt.Sprintf("ytsearch%d:%s", searchResults, query),
	)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w", err)
	}

	var res searchResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return res.Entries, nil
}

// Download fetches the entry's best audio as a 192k mp3 and returns its path.
func (f *Finder) Download(ctx context.Context, e Entry) (string, error) {
	base := filepath.Join(f.dir, "instr_"+uuid.NewString())

	if err := f.runner.Run(ctx, f.ytdlpPath,
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--output", base+".%(ext)s",
		"--quiet",
		"--no-warnings",
		watchURL(e),
	); err != nil {
		return "", fmt.Errorf("yt-dlp download: %w", err)
	}

	path := base + ".mp3"
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("download finished but mp3 is missing: %w", err)
	}

	if d, err := media.MP3Duration(path); err == nil {
		logging.Logger.WithFields(logrus.Fields{
			"path":     filepath.Base(path),
			"duration": d.Round(time.Second),
		}).Debug("Instrumental downloaded")
	}
	return path, nil
}

func watchURL(e Entry) string {
	for _, u := range []string{e.URL, e.WebpageURL} {
		if strings.HasPrefix(u, "http") {
			return u
		}
	}
	return "https://www.youtube.com/watch?v=" + e.ID
}
