package extract

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"

	"github.com/ombuds/enrichment-engine/internal/resilience"
	"github.com/ombuds/enrichment-engine/pkg/anthropic"
)

// AnthropicBackend sends instructions as a cached system block and the text
// as the user turn.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates a backend for the given model.
func NewAnthropic(client anthropic.Client, model string) *AnthropicBackend {
	return &AnthropicBackend{client: client, model: model}
}

// Name implements Backend.
func (b *AnthropicBackend) Name() string { return "anthropic" }

// Complete implements Backend.
func (b *AnthropicBackend) Complete(ctx context.Context, req Request) (string, error) {
	temp := req.Temperature
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       b.model,
		MaxTokens:   int64(req.MaxOutputTokens),
		System:      anthropic.BuildCachedSystemBlocks(req.Instructions),
		Messages:    []anthropic.Message{{Role: "user", Content: req.Text}},
		Temperature: &temp,
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return "", resilience.NewTransientError(err, apiErr.StatusCode)
		}
		return "", err
	}

	resp.Usage.LogCost(b.model, req.SchemaID)
	text := resp.Text()
	if text == "" {
		return "", eris.Wrapf(ErrEmptyResponse, "anthropic: stop reason %q", resp.StopReason)
	}
	return text, nil
}
