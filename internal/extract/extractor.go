package extract

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/resilience"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// Config tunes an Extractor.
type Config struct {
	// MaxChars is the character budget for instructions plus text.
	// Zero disables truncation.
	MaxChars int
	// MaxOutputTokens caps the response size.
	MaxOutputTokens int
	// Temperature is the decoding temperature; keep it low.
	Temperature float64
	// AttemptTimeout bounds a single backend call.
	AttemptTimeout time.Duration
	// Retry is the attempt budget and backoff between attempts.
	Retry resilience.RetryConfig
}

// RetryPolicy returns the attempt budget used for extraction. After attempt n
// (counted from 1) the extractor waits unit*2^n, so a one second unit gives
// 2s then 4s. The rate window is waited on separately.
func RetryPolicy(maxAttempts int, unit time.Duration) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if unit > 0 {
		cfg.InitialBackoff = 2 * unit
		cfg.MaxBackoff = unit << cfg.MaxAttempts
	}
	cfg.JitterFraction = 0
	return cfg
}

// Extractor runs schemas against a Backend. It is safe for concurrent use;
// the rate window is shared by every caller.
type Extractor struct {
	backend Backend
	window  *resilience.SlidingWindow
	cfg     Config
}

// New creates an Extractor. A nil window disables rate limiting.
func New(backend Backend, window *resilience.SlidingWindow, cfg Config) *Extractor {
	if window == nil {
		window = resilience.NewSlidingWindow(0, time.Minute)
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 120 * time.Second
	}
	cfg.Retry.ShouldRetry = resilience.Retryable
	return &Extractor{backend: backend, window: window, cfg: cfg}
}

// Backend returns the name of the configured backend.
func (e *Extractor) Backend() string { return e.backend.Name() }

// Extract sends s's instructions and text to the backend and returns the
// validated result. Every failure is retried up to the attempt budget; after
// that a *Failure wrapping the last error is returned.
func (e *Extractor) Extract(ctx context.Context, s *schema.Schema, text string) (model.Raw, error) {
	instructions := s.Instructions()
	text = e.truncate(s.ID, instructions, text)

	req := Request{
		SchemaID:        s.ID,
		Instructions:    instructions,
		Text:            text,
		Temperature:     e.cfg.Temperature,
		MaxOutputTokens: e.cfg.MaxOutputTokens,
	}

	retry := e.cfg.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(e.backend.Name(), s.ID)
	}

	attempts := 0
	raw, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (model.Raw, error) {
		attempts++
		return e.attempt(ctx, s, req, attempts)
	})
	if err != nil {
		return nil, &Failure{Schema: s.ID, Attempts: attempts, Err: err}
	}
	return raw, nil
}

// attempt consumes one rate-window slot and makes one backend call.
func (e *Extractor) attempt(ctx context.Context, s *schema.Schema, req Request, n int) (model.Raw, error) {
	if err := e.window.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extract: rate limit wait")
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()
	body, err := e.backend.Complete(callCtx, req)
	var raw model.Raw
	if err == nil {
		raw, err = parseResponse(s, body)
	}
	latency := time.Since(start)

	fields := []zap.Field{
		zap.String("schema", s.ID),
		zap.String("backend", e.backend.Name()),
		zap.Int("attempt", n),
		zap.Duration("latency", latency),
	}
	if err != nil {
		zap.L().Warn("extract: attempt failed",
			append(fields, zap.Bool("transient", resilience.IsTransient(err)), zap.Error(err))...)
		return nil, err
	}
	zap.L().Info("extract: attempt succeeded",
		append(fields, zap.Int("response_chars", len(body)))...)
	return raw, nil
}

// truncate cuts text so instructions plus text fit the character budget.
// Instructions are never cut.
func (e *Extractor) truncate(schemaID, instructions, text string) string {
	budget := e.cfg.MaxChars
	if budget <= 0 {
		return text
	}
	ni := utf8.RuneCountInString(instructions)
	nt := utf8.RuneCountInString(text)
	if ni+nt <= budget {
		return text
	}

	keep := max(budget-ni, 0)
	out := truncateRunes(text, keep)
	zap.L().Warn("extract: text truncated",
		zap.String("schema", schemaID),
		zap.Int("budget", budget),
		zap.Int("instruction_chars", ni),
		zap.Int("original_chars", nt),
		zap.Int("kept_chars", keep),
	)
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
