package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ombuds/enrichment-engine/internal/db"
	"github.com/ombuds/enrichment-engine/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS assistidos (
	id         BIGINT PRIMARY KEY,
	nome       TEXT NOT NULL,
	nome_busca TEXT NOT NULL DEFAULT ''
);
ALTER TABLE assistidos ADD COLUMN IF NOT EXISTS nome_busca TEXT NOT NULL DEFAULT '';

CREATE TABLE IF NOT EXISTS processos (
	id           BIGINT PRIMARY KEY,
	numero       TEXT NOT NULL UNIQUE,
	assistido_id BIGINT,
	caso_id      BIGINT
);

CREATE TABLE IF NOT EXISTS documentos (
	id                BIGINT PRIMARY KEY,
	enrichment_status TEXT NOT NULL DEFAULT 'pending',
	enrichment_data   JSONB,
	enriched_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS case_facts (
	id         TEXT PRIMARY KEY,
	caso_id    BIGINT NOT NULL,
	descricao  TEXT NOT NULL,
	tipo       TEXT NOT NULL,
	fonte      TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS case_personas (
	id         TEXT PRIMARY KEY,
	caso_id    BIGINT NOT NULL,
	nome       TEXT NOT NULL,
	papel      TEXT NOT NULL,
	descricao  TEXT,
	fonte      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS anotacoes (
	id           TEXT PRIMARY KEY,
	assistido_id BIGINT,
	processo_id  BIGINT,
	caso_id      BIGINT,
	conteudo     TEXT NOT NULL,
	tipo         TEXT NOT NULL,
	urgencia     TEXT,
	metadata     JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fact_evidence (
	id             TEXT PRIMARY KEY,
	fact_id        TEXT NOT NULL REFERENCES case_facts(id),
	documento_id   BIGINT,
	descricao      TEXT NOT NULL,
	tipo_evidencia TEXT NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_case_facts_caso_id ON case_facts(caso_id);
CREATE INDEX IF NOT EXISTS idx_case_personas_caso_id ON case_personas(caso_id);
CREATE INDEX IF NOT EXISTS idx_anotacoes_assistido_id ON anotacoes(assistido_id);
CREATE INDEX IF NOT EXISTS idx_anotacoes_processo_id ON anotacoes(processo_id);
CREATE INDEX IF NOT EXISTS idx_fact_evidence_fact_id ON fact_evidence(fact_id);
CREATE INDEX IF NOT EXISTS idx_assistidos_nome_busca ON assistidos(nome_busca);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateFact(ctx context.Context, caseID int64, fact model.DerivedFact) (string, error) {
	id := uuid.New().String()
	source := fact.Source
	if source == "" {
		source = DefaultSource
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO case_facts (id, caso_id, descricao, tipo, fonte, confidence) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, caseID, fact.Description, string(fact.Kind), source, fact.Confidence,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert case fact for caso %d", caseID)
	}
	return id, nil
}

func (s *PostgresStore) CreatePersona(ctx context.Context, caseID int64, p model.DerivedPersona, source string) (string, error) {
	id := uuid.New().String()
	if source == "" {
		source = DefaultSource
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO case_personas (id, caso_id, nome, papel, descricao, fonte) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, caseID, p.Name, string(p.Role), nullString(p.Description), source,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert case persona for caso %d", caseID)
	}
	return id, nil
}

func (s *PostgresStore) CreateAnnotation(ctx context.Context, a model.Annotation) (string, error) {
	id := uuid.New().String()
	meta, err := marshalMetadata(a.Metadata)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO anotacoes (id, assistido_id, processo_id, caso_id, conteudo, tipo, urgencia, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, a.ClientID, a.ProceedingID, a.CaseID, a.Content, a.Kind, nullString(string(a.Urgency)), meta,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert annotation")
	}
	return id, nil
}

func (s *PostgresStore) CreateFactEvidence(ctx context.Context, ev model.FactEvidence) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fact_evidence (id, fact_id, documento_id, descricao, tipo_evidencia, confidence)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, ev.FactID, ev.DocumentID, ev.Description, evidenceKind(ev), ev.Confidence,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert fact evidence for fact %s", ev.FactID)
	}
	return id, nil
}

func (s *PostgresStore) FindProceedingByNumber(ctx context.Context, number string) (*model.Proceeding, error) {
	var p model.Proceeding
	err := s.pool.QueryRow(ctx,
		`SELECT id, numero, assistido_id, caso_id FROM processos WHERE numero = $1 LIMIT 1`,
		model.NormalizeCaseNumber(number),
	).Scan(&p.ID, &p.Number, &p.ClientID, &p.CaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: find processo %s", number)
	}
	return &p, nil
}

func (s *PostgresStore) FindClientByName(ctx context.Context, name string) (*model.Client, error) {
	var c model.Client
	err := s.pool.QueryRow(ctx,
		`SELECT id, nome FROM assistidos WHERE nome_busca LIKE $1 ORDER BY id LIMIT 1`,
		likePattern(name),
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: find assistido")
	}
	return &c, nil
}

func (s *PostgresStore) UpdateEnrichmentStatus(ctx context.Context, documentID int64, status model.EnrichmentStatus, data model.Raw) error {
	dataJSON, err := marshalMetadata(data)
	if err != nil {
		return err
	}
	var enrichedAt *time.Time
	if status == model.StatusEnriched {
		now := time.Now().UTC()
		enrichedAt = &now
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documentos SET enrichment_status = $1,
		        enrichment_data = COALESCE($2::jsonb, enrichment_data),
		        enriched_at = COALESCE($3, enriched_at)
		 WHERE id = $4`,
		string(status), dataJSON, enrichedAt, documentID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update enrichment status of documento %d", documentID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "documento %d", documentID)
	}
	return nil
}

func (s *PostgresStore) UpsertProceedings(ctx context.Context, ps []model.Proceeding) (int64, error) {
	rows := make([][]any, len(ps))
	for i, p := range ps {
		rows[i] = []any{p.ID, model.NormalizeCaseNumber(p.Number), p.ClientID, p.CaseID}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "processos",
		Columns:      []string{"id", "numero", "assistido_id", "caso_id"},
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert processos")
}

func (s *PostgresStore) UpsertClients(ctx context.Context, cs []model.Client) (int64, error) {
	rows := make([][]any, len(cs))
	for i, c := range cs {
		rows[i] = []any{c.ID, c.Name, model.NormalizeTag(c.Name)}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "assistidos",
		Columns:      []string{"id", "nome", "nome_busca"},
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert assistidos")
}

// likePattern builds a substring pattern over nome_busca: name is folded with
// model.NormalizeTag and its wildcards escaped.
func likePattern(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(model.NormalizeTag(name)) + "%"
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal metadata")
	}
	return b, nil
}

func evidenceKind(ev model.FactEvidence) string {
	if ev.EvidenceKind == "" {
		return "documento"
	}
	return ev.EvidenceKind
}
