package main

import (
	"context"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/config"
	"github.com/ombuds/enrichment-engine/internal/convert"
	"github.com/ombuds/enrichment-engine/internal/extract"
	"github.com/ombuds/enrichment-engine/internal/pipeline"
	"github.com/ombuds/enrichment-engine/internal/resilience"
	"github.com/ombuds/enrichment-engine/internal/store"
)

// pipelineEnv holds the store and the enricher shared by the serve, enrich
// and batch commands.
type pipelineEnv struct {
	Store    *store.Guarded
	Enricher *pipeline.Enricher
	closers  []io.Closer
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	for i := len(pe.closers) - 1; i >= 0; i-- {
		if err := pe.closers[i].Close(); err != nil {
			zap.L().Warn("close pipeline resource", zap.Error(err))
		}
	}
}

// initPipeline validates c for mode, opens and migrates the store, and builds
// the enricher. Callers should defer env.Close().
func initPipeline(ctx context.Context, c *config.Config, mode string) (*pipelineEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	env := &pipelineEnv{}

	st, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, st)
	env.Store = store.NewGuarded(st, resilience.FromCircuitConfig(c.Store.BreakerThreshold, c.Store.BreakerResetSecs))

	backend, closer, err := extract.NewBackend(ctx, extract.BackendConfig{
		Provider: c.Extract.Provider,
		APIKey:   c.ExtractionKey(),
		Model:    extractionModel(c),
		BaseURL:  extractionBaseURL(c),
	})
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "init extraction backend")
	}
	env.closers = append(env.closers, closer)

	conv, err := convert.New(convert.Options{
		Provider:      c.Convert.Provider,
		PdfToTextPath: c.Convert.PdfToTextPath,
		MistralKey:    c.Convert.MistralKey,
		MistralModel:  c.Convert.MistralModel,
	})
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "init converter")
	}

	env.Enricher = pipeline.New(pipeline.Deps{
		Converter: conv,
		Fetcher: convert.NewFetcher(convert.FetcherOptions{
			MaxFileSizeMB: c.Convert.MaxFileSizeMB,
			Timeout:       time.Duration(c.Convert.DownloadTimeoutSecs) * time.Second,
			TempDir:       c.Convert.TempDir,
			Retry:         resilience.FromRetryConfig(3, 500, 5000, 2, 0.1),
		}),
		Extractor:     newExtractor(backend, c.Extract),
		Store:         env.Store,
		WriteTimeout:  time.Duration(c.Store.WriteTimeoutSecs) * time.Second,
		PreviewChars:  c.Pipeline.PreviewChars,
		TempDir:       c.Convert.TempDir,
		MaxFileSizeMB: c.Convert.MaxFileSizeMB,
	})

	zap.L().Info("pipeline initialised",
		zap.String("extract_provider", backend.Name()),
		zap.String("convert_provider", c.Convert.Provider),
		zap.String("store_driver", c.Store.Driver),
		zap.Int("rate_limit", c.Extract.RateLimit),
	)
	return env, nil
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// newExtractor builds the single extractor shared by every request, so the
// rate window is process-wide.
func newExtractor(backend extract.Backend, ec config.ExtractConfig) *extract.Extractor {
	window := resilience.NewSlidingWindow(ec.RateLimit, time.Duration(ec.WindowSecs)*time.Second)

	return extract.New(backend, window, extract.Config{
		MaxChars:        ec.MaxTextLength,
		MaxOutputTokens: ec.MaxOutputTokens,
		Temperature:     ec.Temperature,
		AttemptTimeout:  time.Duration(ec.AttemptTimeoutSecs) * time.Second,
		Retry:           extract.RetryPolicy(ec.MaxAttempts, time.Duration(ec.BackoffBaseMs)*time.Millisecond),
	})
}

func extractionModel(c *config.Config) string {
	switch c.Extract.Provider {
	case extract.ProviderGemini:
		return c.Gemini.Model
	case extract.ProviderOpenAI:
		return c.OpenAI.Model
	default:
		return c.Anthropic.Model
	}
}

func extractionBaseURL(c *config.Config) string {
	switch c.Extract.Provider {
	case extract.ProviderOpenAI:
		return c.OpenAI.BaseURL
	case extract.ProviderGemini:
		return ""
	default:
		return c.Anthropic.BaseURL
	}
}
