package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ombuds/enrichment-engine/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for local
// runs and tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assistidos (
	id         INTEGER PRIMARY KEY,
	nome       TEXT NOT NULL,
	nome_busca TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS processos (
	id           INTEGER PRIMARY KEY,
	numero       TEXT NOT NULL UNIQUE,
	assistido_id INTEGER,
	caso_id      INTEGER
);

CREATE TABLE IF NOT EXISTS documentos (
	id                INTEGER PRIMARY KEY,
	enrichment_status TEXT NOT NULL DEFAULT 'pending',
	enrichment_data   TEXT,
	enriched_at       DATETIME
);

CREATE TABLE IF NOT EXISTS case_facts (
	id         TEXT PRIMARY KEY,
	caso_id    INTEGER NOT NULL,
	descricao  TEXT NOT NULL,
	tipo       TEXT NOT NULL,
	fonte      TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS case_personas (
	id         TEXT PRIMARY KEY,
	caso_id    INTEGER NOT NULL,
	nome       TEXT NOT NULL,
	papel      TEXT NOT NULL,
	descricao  TEXT,
	fonte      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS anotacoes (
	id           TEXT PRIMARY KEY,
	assistido_id INTEGER,
	processo_id  INTEGER,
	caso_id      INTEGER,
	conteudo     TEXT NOT NULL,
	tipo         TEXT NOT NULL,
	urgencia     TEXT,
	metadata     TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS fact_evidence (
	id             TEXT PRIMARY KEY,
	fact_id        TEXT NOT NULL REFERENCES case_facts(id),
	documento_id   INTEGER,
	descricao      TEXT NOT NULL,
	tipo_evidencia TEXT NOT NULL,
	confidence     REAL NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_case_facts_caso_id ON case_facts(caso_id);
CREATE INDEX IF NOT EXISTS idx_case_personas_caso_id ON case_personas(caso_id);
CREATE INDEX IF NOT EXISTS idx_anotacoes_assistido_id ON anotacoes(assistido_id);
CREATE INDEX IF NOT EXISTS idx_fact_evidence_fact_id ON fact_evidence(fact_id);
CREATE INDEX IF NOT EXISTS idx_assistidos_nome_busca ON assistidos(nome_busca);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := s.addSearchName(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// addSearchName adds assistidos.nome_busca to databases created before the
// column existed. SQLite has no ADD COLUMN IF NOT EXISTS.
func (s *SQLiteStore) addSearchName(ctx context.Context) error {
	var cols, has int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(name = 'nome_busca'), 0) FROM pragma_table_info('assistidos')`,
	).Scan(&cols, &has)
	if err != nil {
		return eris.Wrap(err, "sqlite: inspect assistidos")
	}
	if cols == 0 || has > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx, `ALTER TABLE assistidos ADD COLUMN nome_busca TEXT NOT NULL DEFAULT ''`)
	return eris.Wrap(err, "sqlite: add assistidos.nome_busca")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateFact(ctx context.Context, caseID int64, fact model.DerivedFact) (string, error) {
	id := uuid.New().String()
	source := fact.Source
	if source == "" {
		source = DefaultSource
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO case_facts (id, caso_id, descricao, tipo, fonte, confidence) VALUES (?, ?, ?, ?, ?, ?)`,
		id, caseID, fact.Description, string(fact.Kind), source, fact.Confidence,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert case fact for caso %d", caseID)
	}
	return id, nil
}

func (s *SQLiteStore) CreatePersona(ctx context.Context, caseID int64, p model.DerivedPersona, source string) (string, error) {
	id := uuid.New().String()
	if source == "" {
		source = DefaultSource
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO case_personas (id, caso_id, nome, papel, descricao, fonte) VALUES (?, ?, ?, ?, ?, ?)`,
		id, caseID, p.Name, string(p.Role), nullString(p.Description), source,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert case persona for caso %d", caseID)
	}
	return id, nil
}

func (s *SQLiteStore) CreateAnnotation(ctx context.Context, a model.Annotation) (string, error) {
	id := uuid.New().String()
	meta, err := marshalMetadata(a.Metadata)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO anotacoes (id, assistido_id, processo_id, caso_id, conteudo, tipo, urgencia, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.ClientID, a.ProceedingID, a.CaseID, a.Content, a.Kind,
		nullString(string(a.Urgency)), nullString(string(meta)),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert annotation")
	}
	return id, nil
}

func (s *SQLiteStore) CreateFactEvidence(ctx context.Context, ev model.FactEvidence) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fact_evidence (id, fact_id, documento_id, descricao, tipo_evidencia, confidence)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, ev.FactID, ev.DocumentID, ev.Description, evidenceKind(ev), ev.Confidence,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert fact evidence for fact %s", ev.FactID)
	}
	return id, nil
}

func (s *SQLiteStore) FindProceedingByNumber(ctx context.Context, number string) (*model.Proceeding, error) {
	var (
		p        model.Proceeding
		clientID sql.NullInt64
		caseID   sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, numero, assistido_id, caso_id FROM processos WHERE numero = ? LIMIT 1`,
		model.NormalizeCaseNumber(number),
	).Scan(&p.ID, &p.Number, &clientID, &caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: find processo %s", number)
	}
	p.ClientID = int64Ptr(clientID)
	p.CaseID = int64Ptr(caseID)
	return &p, nil
}

func (s *SQLiteStore) FindClientByName(ctx context.Context, name string) (*model.Client, error) {
	var c model.Client
	err := s.db.QueryRowContext(ctx,
		`SELECT id, nome FROM assistidos WHERE nome_busca LIKE ? ESCAPE '\' ORDER BY id LIMIT 1`,
		likePattern(name),
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: find assistido")
	}
	return &c, nil
}

func (s *SQLiteStore) UpdateEnrichmentStatus(ctx context.Context, documentID int64, status model.EnrichmentStatus, data model.Raw) error {
	dataJSON, err := marshalMetadata(data)
	if err != nil {
		return err
	}
	var enrichedAt *time.Time
	if status == model.StatusEnriched {
		now := time.Now().UTC()
		enrichedAt = &now
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documentos SET enrichment_status = ?,
		        enrichment_data = COALESCE(?, enrichment_data),
		        enriched_at = COALESCE(?, enriched_at)
		 WHERE id = ?`,
		string(status), nullString(string(dataJSON)), enrichedAt, documentID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update enrichment status of documento %d", documentID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "documento %d", documentID)
	}
	return nil
}

func (s *SQLiteStore) UpsertProceedings(ctx context.Context, ps []model.Proceeding) (int64, error) {
	return s.upsert(ctx,
		`INSERT INTO processos (id, numero, assistido_id, caso_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET numero = excluded.numero,
		   assistido_id = excluded.assistido_id, caso_id = excluded.caso_id`,
		len(ps), func(i int) []any {
			p := ps[i]
			return []any{p.ID, model.NormalizeCaseNumber(p.Number), p.ClientID, p.CaseID}
		})
}

func (s *SQLiteStore) UpsertClients(ctx context.Context, cs []model.Client) (int64, error) {
	return s.upsert(ctx,
		`INSERT INTO assistidos (id, nome, nome_busca) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET nome = excluded.nome, nome_busca = excluded.nome_busca`,
		len(cs), func(i int) []any { return []any{cs[i].ID, cs[i].Name, model.NormalizeTag(cs[i].Name)} })
}

func (s *SQLiteStore) upsert(ctx context.Context, query string, n int, args func(i int) []any) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	var total int64
	for i := range n {
		res, err := stmt.ExecContext(ctx, args(i)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert row %d", i)
		}
		affected, _ := res.RowsAffected()
		total += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return total, nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
