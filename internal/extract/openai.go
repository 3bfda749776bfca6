package extract

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"github.com/sashabaranov/go-openai"

	"github.com/ombuds/enrichment-engine/internal/resilience"
)

// OpenAIBackend uses chat completions in JSON object mode.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-compatible backend. An empty baseURL uses the
// public API.
func NewOpenAI(apiKey, model, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg), model: model}
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return "openai" }

// Complete implements Backend.
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instructions},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: float32(req.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.HTTPStatusCode) {
			return "", resilience.NewTransientError(eris.Wrap(err, "openai: chat completion"), apiErr.HTTPStatusCode)
		}
		return "", eris.Wrap(err, "openai: chat completion")
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", eris.Wrap(ErrEmptyResponse, "openai: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
