package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI transcribes through the hosted whisper API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a hosted backend. An empty model means whisper-1.
func NewOpenAI(client *openai.Client, model string) *OpenAI {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAI{client: client, model: model}
}

// Transcribe uploads audioPath and asks for timestamped segments.
func (o *OpenAI) Transcribe(ctx context.Context, audioPath string) (Transcript, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("openai transcription: %w", err)
	}

	tr := Transcript{
		Language: resp.Language,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
	}
	for _, s := range resp.Segments {
		tr.Segments = append(tr.Segments, Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	if len(tr.Segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		tr.Segments = []Segment{{End: resp.Duration, Text: strings.TrimSpace(resp.Text)}}
	}
	return tr, nil
}
