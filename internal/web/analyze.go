package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/pipeline"
)

// multipart parts larger than this spill to temporary files.
const multipartMemory = 32 << 20

// Analyzer runs the analysis pipeline. *pipeline.Pipeline satisfies it.
type Analyzer interface {
	Run(ctx context.Context, videoPath string, progress func(pipeline.Event)) (*pipeline.Result, error)
	Reroll(ctx context.Context, transcript string, duration time.Duration, exclude []string) (*pipeline.Result, error)
}

// donePayload is the final event of an analysis stream.
type donePayload struct {
	Progress int  `json:"progress"`
	Done     bool `json:"done"`
	*pipeline.Result
	Error string `json:"error,omitempty"`
}

// Analyze accepts an MP4 upload and streams progress as server-sent events
// (POST /analyze).
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File is too large (max %d MB)", h.maxUploadBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		if _, sent := r.MultipartForm.Value["video"]; sent {
			writeError(w, http.StatusBadRequest, "No file selected")
			return
		}
		writeError(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".mp4") {
		writeError(w, http.StatusBadRequest, "Only MP4 files are supported")
		return
	}

	videoPath, err := h.saveUpload(file)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to save upload")
		writeError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	defer os.Remove(videoPath)

	stream, ok := newEventStream(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	log := logging.Logger.WithFields(logrus.Fields{
		"upload": header.Filename,
		"size":   header.Size,
	})
	log.Info("Analysis started")

	res, err := h.analyzer.Run(r.Context(), videoPath, func(e pipeline.Event) {
		stream.send(e)
	})

	switch {
	case err == nil:
		stream.send(donePayload{Progress: 100, Done: true, Result: res})
	case res != nil:
		// The mood is known even though the songs are not.
		stream.send(donePayload{Progress: 100, Done: true, Result: res, Error: userMessage(err)})
	case r.Context().Err() != nil:
		log.Info("Client went away")
	default:
		stream.send(map[string]string{"error": userMessage(err)})
	}
}

// Reroll returns a fresh set of tracks for a transcript (POST /reroll).
func (h *Handlers) Reroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string   `json:"transcript"`
		Duration   *float64 `json:"duration"`
		Exclude    []string `json:"exclude"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "No transcript provided")
		return
	}

	var duration time.Duration
	if req.Duration != nil && *req.Duration > 0 {
		duration = time.Duration(*req.Duration * float64(time.Second))
	}

	res, err := h.analyzer.Reroll(r.Context(), req.Transcript, duration, req.Exclude)
	if err != nil {
		logging.Logger.WithError(err).Warn("Reroll failed")
		writeError(w, http.StatusInternalServerError, "Reroll failed: "+userMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tracks": res.Tracks})
}

func (h *Handlers) saveUpload(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(h.uploadDir, uuid.NewString()+".mp4")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

// userMessage turns pipeline errors into text safe to show in the browser.
func userMessage(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrExtraction):
		return "Could not extract audio from the video."
	case errors.Is(err, pipeline.ErrTranscription):
		return "Could not transcribe the audio."
	case errors.Is(err, pipeline.ErrRecommendation):
		return "Could not fetch song recommendations right now."
	default:
		return "Processing failed."
	}
}

type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher}, true
}

func (s *eventStream) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to encode event")
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}
