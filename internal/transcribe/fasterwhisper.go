package transcribe

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/justestif/resonance/internal/media"
)

//go:embed assets/faster_whisper.py
var fwScript []byte

// FasterWhisper runs the local faster-whisper model through a small python helper.
type FasterWhisper struct {
	python      string
	model       string
	device      string
	computeType string
	beamSize    int
	runner      media.CommandRunner
}

// FasterWhisperOption configures FasterWhisper.
type FasterWhisperOption func(*FasterWhisper)

// WithPython sets the interpreter used to run the helper.
func WithPython(path string) FasterWhisperOption {
	return func(f *FasterWhisper) {
		if path != "" {
			f.python = path
		}
	}
}

// WithModel sets the whisper model size ("tiny", "base", "small", ...).
func WithModel(model string) FasterWhisperOption {
	return func(f *FasterWhisper) {
		if model != "" {
			f.model = model
		}
	}
}

// WithDevice sets the inference device ("cpu", "cuda", "auto").
func WithDevice(device string) FasterWhisperOption {
	return func(f *FasterWhisper) {
		if device != "" {
			f.device = device
		}
	}
}

// WithRunner sets a custom command runner (for testing).
func WithRunner(r media.CommandRunner) FasterWhisperOption {
	return func(f *FasterWhisper) {
		f.runner = r
	}
}

// NewFasterWhisper creates the local backend: base model, cpu, int8, beam size 5.
func NewFasterWhisper(opts ...FasterWhisperOption) *FasterWhisper {
	f := &FasterWhisper{
		python:      "python3",
		model:       "base",
		device:      "cpu",
		computeType: "int8",
		beamSize:    5,
		runner:      &media.ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type fwOut struct {
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Transcribe runs the helper on audioPath and parses its JSON output.
func (f *FasterWhisper) Transcribe(ctx context.Context, audioPath string) (Transcript, error) {
	script, err := os.CreateTemp("", "resonance_faster_whisper_*.py")
	if err != nil {
		return Transcript{}, fmt.Errorf("create helper script: %w", err)
	}
	defer os.Remove(script.Name())

	if _, err := script.Write(fwScript); err != nil {
		script.Close()
		return Transcript{}, fmt.Errorf("write helper script: %w", err)
	}
	if err := script.Close(); err != nil {
		return Transcript{}, fmt.Errorf("write helper script: %w", err)
	}

	out, err := f.runner.Output(ctx, f.python, script.Name(),
		"--audio", audioPath,
		"--model", f.model,
		"--device", f.device,
		"--compute-type", f.computeType,
		"--beam-size", strconv.Itoa(f.beamSize),
	)
	if err != nil {
		return Transcript{}, fmt.Errorf("faster-whisper failed: %w", err)
	}

	var parsed fwOut
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Transcript{}, fmt.Errorf("parse helper output: %w", err)
	}

	tr := Transcript{
		Language: parsed.Language,
		Duration: time.Duration(parsed.Duration * float64(time.Second)),
	}
	for _, s := range parsed.Segments {
		s.Text = strings.TrimSpace(s.Text)
		tr.Segments = append(tr.Segments, s)
	}
	return tr, nil
}
