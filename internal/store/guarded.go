package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/resilience"
)

// Guarded wraps a Store with a circuit breaker. Once the database keeps
// failing, calls are rejected with resilience.ErrCircuitOpen without
// touching it until the reset timeout elapses.
type Guarded struct {
	inner   Store
	breaker *resilience.CircuitBreaker
}

// NewGuarded wraps inner. Missing rows and caller cancellation do not count
// as failures.
func NewGuarded(inner Store, cfg resilience.CircuitBreakerConfig) *Guarded {
	cfg.ShouldTrip = func(err error) bool {
		return !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled)
	}
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(from, to resilience.CircuitState) {
			zap.L().Warn("store: circuit state changed",
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}
	}
	return &Guarded{inner: inner, breaker: resilience.NewCircuitBreaker(cfg)}
}

// State reports the breaker state for health checks.
func (g *Guarded) State() resilience.CircuitState { return g.breaker.State() }

func (g *Guarded) CreateFact(ctx context.Context, caseID int64, fact model.DerivedFact) (string, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (string, error) {
		return g.inner.CreateFact(ctx, caseID, fact)
	})
}

func (g *Guarded) CreatePersona(ctx context.Context, caseID int64, p model.DerivedPersona, source string) (string, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (string, error) {
		return g.inner.CreatePersona(ctx, caseID, p, source)
	})
}

func (g *Guarded) CreateAnnotation(ctx context.Context, a model.Annotation) (string, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (string, error) {
		return g.inner.CreateAnnotation(ctx, a)
	})
}

func (g *Guarded) CreateFactEvidence(ctx context.Context, ev model.FactEvidence) (string, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (string, error) {
		return g.inner.CreateFactEvidence(ctx, ev)
	})
}

func (g *Guarded) FindProceedingByNumber(ctx context.Context, number string) (*model.Proceeding, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (*model.Proceeding, error) {
		return g.inner.FindProceedingByNumber(ctx, number)
	})
}

func (g *Guarded) FindClientByName(ctx context.Context, name string) (*model.Client, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (*model.Client, error) {
		return g.inner.FindClientByName(ctx, name)
	})
}

func (g *Guarded) UpdateEnrichmentStatus(ctx context.Context, documentID int64, status model.EnrichmentStatus, data model.Raw) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.inner.UpdateEnrichmentStatus(ctx, documentID, status, data)
	})
}

func (g *Guarded) UpsertProceedings(ctx context.Context, ps []model.Proceeding) (int64, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (int64, error) {
		return g.inner.UpsertProceedings(ctx, ps)
	})
}

func (g *Guarded) UpsertClients(ctx context.Context, cs []model.Client) (int64, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (int64, error) {
		return g.inner.UpsertClients(ctx, cs)
	})
}

// Ping bypasses the breaker so health checks see the real database state.
func (g *Guarded) Ping(ctx context.Context) error { return g.inner.Ping(ctx) }

func (g *Guarded) Migrate(ctx context.Context) error { return g.inner.Migrate(ctx) }

func (g *Guarded) Close() error { return g.inner.Close() }
