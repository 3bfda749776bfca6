// Package api exposes the enrichment pipelines over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/resilience"
)

// Enricher runs the enrichment categories. *pipeline.Enricher satisfies it.
type Enricher interface {
	EnrichDocument(ctx context.Context, in model.DocumentInput) (*model.DocumentResult, error)
	EnrichNotices(ctx context.Context, in model.NoticeInput) (*model.NoticeResult, error)
	EnrichTranscript(ctx context.Context, in model.TranscriptInput) (*model.TranscriptResult, error)
	EnrichAgenda(ctx context.Context, in model.AgendaInput) (*model.AgendaResult, error)
	EnrichMessage(ctx context.Context, in model.MessageInput) (*model.MessageResult, error)
}

// Pinger checks storage reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// breakerState is implemented by stores wrapped in a circuit breaker.
type breakerState interface {
	State() resilience.CircuitState
}

// Options configures the router.
type Options struct {
	// APIKey, when set, is required in the X-API-Key header of /enrich routes.
	APIKey string
	// RequestsPerSecond throttles /enrich routes. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int
	AllowedOrigins    []string
	Version           string
	// RequestTimeout bounds a whole enrichment request.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler.
func NewRouter(e Enricher, store Pinger, opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Minute
	}

	h := &handlers{enricher: e, store: store, version: opts.Version}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)

	r.Route("/enrich", func(r chi.Router) {
		r.Use(apiKeyAuth(opts.APIKey))
		r.Use(throttle(opts.RequestsPerSecond, opts.Burst))
		r.Use(middleware.Timeout(opts.RequestTimeout))

		r.Post("/document", h.document)
		r.Post("/pje-text", h.notices)
		r.Post("/transcript", h.transcript)
		r.Post("/audiencia", h.agenda)
		r.Post("/whatsapp", h.message)
	})

	return r
}
