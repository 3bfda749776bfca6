package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/resilience"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func int64p(v int64) *int64 { return &v }

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateFactAndEvidence", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		factID, err := s.CreateFact(ctx, 42, model.DerivedFact{
			Description: "Sentença condenado — Roubo",
			Kind:        model.FactUncontested,
			Confidence:  0.9,
			Source:      "enrichment:document:sentenca",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, factID)

		evID, err := s.CreateFactEvidence(ctx, model.FactEvidence{
			FactID:      factID,
			DocumentID:  int64p(7),
			Description: "Extraído automaticamente de sentenca",
			Confidence:  0.9,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, evID)
		assert.NotEqual(t, factID, evID)
	})

	t.Run("EvidenceForUnknownFactFails", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreateFactEvidence(context.Background(), model.FactEvidence{FactID: "missing"})
		assert.Error(t, err)
	})

	t.Run("CreatePersona", func(t *testing.T) {
		s := newStore(t)
		id, err := s.CreatePersona(context.Background(), 42, model.DerivedPersona{
			Name: "Maria", Role: model.RoleWitness,
		}, "enrichment:transcript")
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("CreateAnnotation", func(t *testing.T) {
		s := newStore(t)
		id, err := s.CreateAnnotation(context.Background(), model.Annotation{
			ClientID: int64p(3),
			Content:  "[Enrichment] Documento laudo processado automaticamente",
			Kind:     "enrichment",
			Metadata: map[string]any{"document_type": "laudo"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("ProceedingLookup", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		n, err := s.UpsertProceedings(ctx, []model.Proceeding{
			{ID: 1, Number: "00000011120248050001", ClientID: int64p(9), CaseID: int64p(4)},
			{ID: 2, Number: "0000002-22.2024.8.05.0001"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		p, err := s.FindProceedingByNumber(ctx, "0000001-11.2024.8.05.0001")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, int64(1), p.ID)
		assert.Equal(t, int64(9), *p.ClientID)
		assert.Equal(t, int64(4), *p.CaseID)

		p, err = s.FindProceedingByNumber(ctx, "0000002-22.2024.8.05.0001")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Nil(t, p.ClientID)

		p, err = s.FindProceedingByNumber(ctx, "9999999-99.2024.8.05.0001")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("ClientLookup", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpsertClients(ctx, []model.Client{{ID: 1, Name: "JOÃO DA SILVA"}, {ID: 2, Name: "Ana Souza"}})
		require.NoError(t, err)

		c, err := s.FindClientByName(ctx, "DA SILVA")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, int64(1), c.ID)

		c, err = s.FindClientByName(ctx, "Pedro")
		require.NoError(t, err)
		assert.Nil(t, c)

		c, err = s.FindClientByName(ctx, "a_s")
		require.NoError(t, err)
		assert.Nil(t, c)

		for _, query := range []string{"joão", "Joao da Silva", "JOAO"} {
			c, err = s.FindClientByName(ctx, query)
			require.NoError(t, err)
			require.NotNil(t, c, query)
			assert.Equal(t, int64(1), c.ID, query)
			assert.Equal(t, "JOÃO DA SILVA", c.Name)
		}
	})

	t.Run("UpsertIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpsertClients(ctx, []model.Client{{ID: 1, Name: "Old"}})
		require.NoError(t, err)
		_, err = s.UpsertClients(ctx, []model.Client{{ID: 1, Name: "New Name"}})
		require.NoError(t, err)

		c, err := s.FindClientByName(ctx, "new")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "New Name", c.Name)
	})

	t.Run("UpdateEnrichmentStatusMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.UpdateEnrichmentStatus(context.Background(), 404, model.StatusEnriched, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, func(t *testing.T) Store { return newTestSQLite(t) })
}

func TestGuardedSQLiteStore(t *testing.T) {
	storeTestSuite(t, func(t *testing.T) Store {
		return NewGuarded(newTestSQLite(t), resilience.DefaultCircuitBreakerConfig())
	})
}

func TestSQLite_MigrateAddsSearchName(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	ctx := context.Background()

	_, err = s.db.ExecContext(ctx, `CREATE TABLE assistidos (id INTEGER PRIMARY KEY, nome TEXT NOT NULL)`)
	require.NoError(t, err)

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	_, err = s.UpsertClients(ctx, []model.Client{{ID: 9, Name: "Conceição Araújo"}})
	require.NoError(t, err)
	c, err := s.FindClientByName(ctx, "CONCEICAO")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(9), c.ID)
}

func TestSQLite_UpdateEnrichmentStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO documentos (id) VALUES (7)`)
	require.NoError(t, err)

	require.NoError(t, s.UpdateEnrichmentStatus(ctx, 7, model.StatusProcessing, nil))
	require.NoError(t, s.UpdateEnrichmentStatus(ctx, 7, model.StatusEnriched, model.Raw{"document_type": "laudo"}))

	var (
		status     string
		data       *string
		enrichedAt *string
	)
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT enrichment_status, enrichment_data, enriched_at FROM documentos WHERE id = 7`,
	).Scan(&status, &data, &enrichedAt))
	assert.Equal(t, "enriched", status)
	require.NotNil(t, data)
	assert.JSONEq(t, `{"document_type": "laudo"}`, *data)
	assert.NotNil(t, enrichedAt)

	// A later status change without data keeps the recorded result.
	require.NoError(t, s.UpdateEnrichmentStatus(ctx, 7, model.StatusFailed, nil))
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT enrichment_status, enrichment_data FROM documentos WHERE id = 7`,
	).Scan(&status, &data))
	assert.Equal(t, "failed", status)
	require.NotNil(t, data)
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "")
	assert.ErrorContains(t, err, "database_url")

	_, err = Open(context.Background(), "mysql", "x")
	assert.ErrorContains(t, err, `unknown driver "mysql"`)

	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "o.db"))
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%maria%", likePattern("  Maria "))
	assert.Equal(t, "%jose conceicao%", likePattern("JOSÉ Conceição"))
	assert.Equal(t, `%100\%\_x\\%`, likePattern(`100%_x\`))
}
