package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output []byte
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, call{name, args})
	return f.err
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name, args})
	return f.output, f.err
}

func TestExtract(t *testing.T) {
	runner := &fakeRunner{}
	e := NewExtractor(WithFFmpegPath("/opt/ffmpeg"), WithCommandRunner(runner))

	if err := e.Extract(context.Background(), "in.mp4", "out.wav"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := call{
		name: "/opt/ffmpeg",
		args: []string{"-i", "in.mp4", "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", "-y", "out.wav"},
	}
	if len(runner.calls) != 1 || !reflect.DeepEqual(runner.calls[0], want) {
		t.Errorf("calls = %+v, want %+v", runner.calls, want)
	}
}

func TestExtractError(t *testing.T) {
	boom := errors.New("exit status 1")
	e := NewExtractor(WithCommandRunner(&fakeRunner{err: boom}))

	err := e.Extract(context.Background(), "in.mp4", "out.wav")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestVerifyInstalled(t *testing.T) {
	ok := &fakeRunner{output: []byte("ffmpeg version 6.1")}
	if err := NewExtractor(WithCommandRunner(ok)).VerifyInstalled(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got := ok.calls[0]; got.name != "ffmpeg" || got.args[0] != "-version" {
		t.Errorf("call = %+v, want ffmpeg -version", got)
	}

	missing := &fakeRunner{err: errors.New("executable file not found")}
	if err := NewExtractor(WithCommandRunner(missing)).VerifyInstalled(context.Background()); err == nil {
		t.Error("expected error when ffmpeg is missing")
	}
}

func writeWAV(t *testing.T, path string, sampleRate, samples int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, samples),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWAVDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "speech.wav")
	writeWAV(t, path, 16000, 16000*2)

	got, err := WAVDuration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The RIFF size includes the header, so allow a little slack.
	if diff := got - 2*time.Second; diff < 0 || diff > 10*time.Millisecond {
		t.Errorf("WAVDuration() = %v, want about 2s", got)
	}
}

func TestWAVDurationInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := WAVDuration(path); !errors.Is(err, ErrInvalidAudio) {
		t.Errorf("err = %v, want ErrInvalidAudio", err)
	}
	if _, err := WAVDuration(filepath.Join(dir, "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMP3DurationMissing(t *testing.T) {
	if _, err := MP3Duration(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    ProbeResult
		wantErr bool
	}{
		{
			name:   "video with audio",
			output: `{"format":{"duration":"12.500000"},"streams":[{"codec_type":"video"},{"codec_type":"audio"}]}`,
			want:   ProbeResult{Duration: 12500 * time.Millisecond, HasAudio: true},
		},
		{
			name:   "silent video",
			output: `{"format":{"duration":"3"},"streams":[{"codec_type":"video"}]}`,
			want:   ProbeResult{Duration: 3 * time.Second},
		},
		{
			name:    "no duration",
			output:  `{"format":{},"streams":[]}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			output:  `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{output: []byte(tt.output)}
			got, err := NewProber("", runner).Probe(context.Background(), "clip.mp4")
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Probe() = %+v, want %+v", got, tt.want)
			}
			if runner.calls[0].name != "ffprobe" {
				t.Errorf("ran %q, want ffprobe", runner.calls[0].name)
			}
		})
	}
}

func TestMix(t *testing.T) {
	tests := []struct {
		name        string
		probe       string
		videoVolume float64
		wantFilter  string
	}{
		{
			name:        "blend with original audio",
			probe:       `{"format":{"duration":"10.5"},"streams":[{"codec_type":"audio"}]}`,
			videoVolume: 1,
			wantFilter:  "[0:a]volume=1[va]; [1:a]atrim=start=1.5:duration=10.5,asetpts=PTS-STARTPTS,volume=0.3[ma]; [va][ma]amix=inputs=2:duration=first:normalize=0[aout]",
		},
		{
			name:        "muted video audio",
			probe:       `{"format":{"duration":"10.5"},"streams":[{"codec_type":"audio"}]}`,
			videoVolume: 0,
			wantFilter:  "[1:a]atrim=start=1.5:duration=10.5,asetpts=PTS-STARTPTS,volume=0.3[ma]; [ma]anull[aout]",
		},
		{
			name:        "silent video",
			probe:       `{"format":{"duration":"10.5"},"streams":[{"codec_type":"video"}]}`,
			videoVolume: 1,
			wantFilter:  "[1:a]atrim=start=1.5:duration=10.5,asetpts=PTS-STARTPTS,volume=0.3[ma]; [ma]anull[aout]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probeRunner := &fakeRunner{output: []byte(tt.probe)}
			ffmpeg := &fakeRunner{}
			m := NewMixer(NewProber("", probeRunner), WithCommandRunner(ffmpeg))

			err := m.Mix(context.Background(), MixRequest{
				VideoPath:   "v.mp4",
				AudioPath:   "a.mp3",
				OutputPath:  "out.mp4",
				Start:       1500 * time.Millisecond,
				VideoVolume: tt.videoVolume,
				MusicVolume: 0.3,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			args := ffmpeg.calls[0].args
			joined := strings.Join(args, " ")
			if !strings.Contains(joined, "-filter_complex "+tt.wantFilter+" -map") {
				t.Errorf("args = %q, want filter %q", joined, tt.wantFilter)
			}
			if args[len(args)-1] != "out.mp4" {
				t.Errorf("last arg = %q, want output path", args[len(args)-1])
			}
			for _, flag := range []string{"-c:v copy", "-c:a aac", "-b:a 192k", "-movflags +faststart", "-shortest"} {
				if !strings.Contains(joined, flag) {
					t.Errorf("args missing %q", flag)
				}
			}
		})
	}
}

func TestWithStderr(t *testing.T) {
	base := errors.New("exit status 1")
	err := withStderr(base, "line one\nInvalid data found when processing input\n")
	if !errors.Is(err, base) || !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("withStderr() = %v", err)
	}
	if got := withStderr(base, "  "); got != base {
		t.Errorf("withStderr() with empty stderr = %v, want base error", got)
	}
}
