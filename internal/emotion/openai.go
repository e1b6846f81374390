package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/mood"
)

const systemPrompt = `You label the emotional tone of spoken video transcripts.
Allowed labels: joy, sadness, anger, fear, surprise, neutral.
Return ONLY a JSON object of the form {"emotions":[{"label":"joy","strength":0.7}]}.
Strengths are between 0 and 1 and describe how strongly each emotion comes through.
List at most three labels. Use neutral when no emotion stands out.`

// ErrEmptyResponse is returned when the model replies with no content.
var ErrEmptyResponse = errors.New("emotion: empty response")

// OpenAI classifies text with a chat completion in JSON mode.
type OpenAI struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures an OpenAI classifier.
type OpenAIOption func(*OpenAI)

// WithModel overrides the chat model.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// NewOpenAI creates a classifier backed by the given client.
func NewOpenAI(client *openai.Client, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{client: client, model: openai.GPT4oMini}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type labelledEmotions struct {
	Emotions []struct {
		Label    string  `json:"label"`
		Strength float64 `json:"strength"`
	} `json:"emotions"`
}

// Classify asks the model for emotion labels. Labels outside the vocabulary
// are dropped; if none remain the result is {neutral: 1}.
func (o *OpenAI) Classify(ctx context.Context, text string) ([]mood.Score, error) {
	if strings.TrimSpace(text) == "" {
		return neutralOnly(), nil
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("emotion: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	var parsed labelledEmotions
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("emotion: decode response: %w", err)
	}

	scores := make([]mood.Score, 0, len(parsed.Emotions))
	for _, e := range parsed.Emotions {
		label := mood.ParseEmotion(e.Label)
		if !label.Known() {
			logging.Logger.WithFields(logrus.Fields{
				"label": e.Label,
				"model": o.model,
			}).Debug("Dropping unknown emotion label")
			continue
		}
		scores = append(scores, mood.Score{Emotion: label, Strength: e.Strength})
	}

	if len(scores) == 0 {
		return neutralOnly(), nil
	}
	return scores, nil
}
