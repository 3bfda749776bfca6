package extract

import (
	"context"
	"io"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/ombuds/enrichment-engine/pkg/anthropic"
)

// Provider names accepted by NewBackend.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
)

// BackendConfig selects and configures a backend.
type BackendConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewBackend builds the backend named by cfg.Provider. The returned closer
// is never nil.
func NewBackend(ctx context.Context, cfg BackendConfig) (Backend, io.Closer, error) {
	if cfg.APIKey == "" {
		return nil, nil, eris.Errorf("extract: api key required for provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderAnthropic, "":
		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return NewAnthropic(anthropic.NewClient(cfg.APIKey, opts...), cfg.Model), nopCloser{}, nil
	case ProviderGemini:
		b, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL), nopCloser{}, nil
	default:
		return nil, nil, eris.Errorf("extract: unknown provider %q", cfg.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
