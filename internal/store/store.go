// Package store persists enrichment output: case facts, personas, notes and
// evidence links, plus the lookups used to link extracted case numbers and
// names to existing records.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ombuds/enrichment-engine/internal/model"
)

// ErrNotFound is returned by updates that match no row.
var ErrNotFound = eris.New("record not found")

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Writes. Each returns the id of the created row.
	CreateFact(ctx context.Context, caseID int64, fact model.DerivedFact) (string, error)
	CreatePersona(ctx context.Context, caseID int64, persona model.DerivedPersona, source string) (string, error)
	CreateAnnotation(ctx context.Context, a model.Annotation) (string, error)
	CreateFactEvidence(ctx context.Context, ev model.FactEvidence) (string, error)

	// Lookups return nil, nil when nothing matches.
	FindProceedingByNumber(ctx context.Context, number string) (*model.Proceeding, error)
	FindClientByName(ctx context.Context, name string) (*model.Client, error)

	// UpdateEnrichmentStatus moves a stored document through enrichment.
	// data is recorded when non-nil.
	UpdateEnrichmentStatus(ctx context.Context, documentID int64, status model.EnrichmentStatus, data model.Raw) error

	// Registry import.
	UpsertProceedings(ctx context.Context, ps []model.Proceeding) (int64, error)
	UpsertClients(ctx context.Context, cs []model.Client) (int64, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// DefaultSource tags rows written without a more specific source.
const DefaultSource = "enrichment-engine"

// Open creates a Store for the given driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres", "":
		if dsn == "" {
			return nil, eris.New("store: postgres requires database_url")
		}
		return NewPostgres(ctx, dsn, nil)
	case "sqlite":
		if dsn == "" {
			dsn = "enrichment.db"
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
