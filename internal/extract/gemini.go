package extract

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"google.golang.org/api/option"
)

// generator is the part of *genai.GenerativeModel the backend calls.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiBackend sends the whole prompt as one part and asks for a JSON
// response MIME type.
type GeminiBackend struct {
	client   *genai.Client
	model    string
	newModel func(req Request) generator
}

// NewGemini creates a Gemini backend. Close releases the client.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	b := &GeminiBackend{client: client, model: model}
	b.newModel = b.generativeModel
	return b, nil
}

func (b *GeminiBackend) generativeModel(req Request) generator {
	m := b.client.GenerativeModel(b.model)
	m.SetTemperature(float32(req.Temperature))
	m.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	m.ResponseMIMEType = "application/json"
	return m
}

// Name implements Backend.
func (b *GeminiBackend) Name() string { return "gemini" }

// Complete implements Backend.
func (b *GeminiBackend) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := b.newModel(req).GenerateContent(ctx, genai.Text(req.Prompt()))
	if err != nil {
		return "", eris.Wrap(err, "gemini: generate content")
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				out.WriteString(string(txt))
			}
		}
		break
	}
	if out.Len() == 0 {
		return "", eris.Wrap(ErrEmptyResponse, "gemini: no text candidates")
	}
	return out.String(), nil
}

// Close releases the underlying client.
func (b *GeminiBackend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}
