package registry

import (
	"context"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
)

// Kind names an importable registry.
type Kind string

const (
	KindProceedings Kind = "processos"
	KindClients     Kind = "assistidos"
)

// ParseKind maps a CLI argument to a Kind.
func ParseKind(s string) (Kind, error) {
	switch model.NormalizeTag(s) {
	case "processos", "processo", "proceedings":
		return KindProceedings, nil
	case "assistidos", "assistido", "clients":
		return KindClients, nil
	default:
		return "", eris.Errorf("registry: unknown registry %q", s)
	}
}

// Upserter is the store surface the import writes through.
type Upserter interface {
	UpsertProceedings(ctx context.Context, ps []model.Proceeding) (int64, error)
	UpsertClients(ctx context.Context, cs []model.Client) (int64, error)
}

// Options configures Import.
type Options struct {
	BatchSize int // default 1000
	CSV       CSVOptions
}

// Stats summarises an import.
type Stats struct {
	Rows     int   `json:"rows" yaml:"rows"`
	Skipped  int   `json:"skipped" yaml:"skipped"`
	Upserted int64 `json:"upserted" yaml:"upserted"`
}

var columnAliases = map[Kind]map[string]string{
	KindProceedings: {
		"id":              "id",
		"numero":          "numero",
		"numero_processo": "numero",
		"number":          "numero",
		"assistido_id":    "assistido_id",
		"client_id":       "assistido_id",
		"caso_id":         "caso_id",
		"case_id":         "caso_id",
	},
	KindClients: {
		"id":   "id",
		"nome": "nome",
		"name": "nome",
	},
}

var requiredColumns = map[Kind][]string{
	KindProceedings: {"id", "numero"},
	KindClients:     {"id", "nome"},
}

// Import streams a registry CSV into st in batches. Malformed rows are
// logged and skipped; a store failure aborts the import.
func Import(ctx context.Context, st Upserter, kind Kind, r io.Reader, opts Options) (*Stats, error) {
	if _, ok := columnAliases[kind]; !ok {
		return nil, eris.Errorf("registry: unknown registry %q", kind)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	headerCh, rowCh, errCh := StreamCSV(ctx, r, opts.CSV)

	header, ok := <-headerCh
	if !ok {
		if err := <-errCh; err != nil {
			return nil, err
		}
		return nil, eris.New("registry: empty csv")
	}
	cols, err := mapColumns(kind, header)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("registry", string(kind)))
	b := &batcher{st: st, kind: kind, size: opts.BatchSize}
	stats := &Stats{}

	for row := range rowCh {
		stats.Rows++
		if err := b.add(cols, row.Fields); err != nil {
			stats.Skipped++
			log.Warn("registry: skipping row", zap.Int("line", row.Line), zap.Error(err))
			continue
		}
		if b.full() {
			n, err := b.flush(ctx)
			if err != nil {
				return stats, err
			}
			stats.Upserted += n
		}
	}
	if err := <-errCh; err != nil {
		return stats, err
	}

	n, err := b.flush(ctx)
	if err != nil {
		return stats, err
	}
	stats.Upserted += n

	log.Info("registry: import complete",
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
		zap.Int64("upserted", stats.Upserted),
	)
	return stats, nil
}

func mapColumns(kind Kind, header []string) (map[string]int, error) {
	aliases := columnAliases[kind]
	cols := make(map[string]int)
	for i, h := range header {
		if name, ok := aliases[model.NormalizeTag(h)]; ok {
			if _, dup := cols[name]; !dup {
				cols[name] = i
			}
		}
	}
	for _, req := range requiredColumns[kind] {
		if _, ok := cols[req]; !ok {
			return nil, eris.Errorf("registry: %s csv is missing column %q", kind, req)
		}
	}
	return cols, nil
}

type batcher struct {
	st          Upserter
	kind        Kind
	size        int
	proceedings []model.Proceeding
	clients     []model.Client
}

func (b *batcher) add(cols map[string]int, fields []string) error {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}

	id, err := parseID(get("id"))
	if err != nil {
		return eris.Wrap(err, "id")
	}

	switch b.kind {
	case KindProceedings:
		number := get("numero")
		if number == "" {
			return eris.New("numero is empty")
		}
		p := model.Proceeding{ID: id, Number: number}
		if p.ClientID, err = parseOptionalID(get("assistido_id")); err != nil {
			return eris.Wrap(err, "assistido_id")
		}
		if p.CaseID, err = parseOptionalID(get("caso_id")); err != nil {
			return eris.Wrap(err, "caso_id")
		}
		b.proceedings = append(b.proceedings, p)
	case KindClients:
		name := get("nome")
		if name == "" {
			return eris.New("nome is empty")
		}
		b.clients = append(b.clients, model.Client{ID: id, Name: name})
	}
	return nil
}

func (b *batcher) full() bool {
	return len(b.proceedings)+len(b.clients) >= b.size
}

func (b *batcher) flush(ctx context.Context) (int64, error) {
	switch {
	case len(b.proceedings) > 0:
		n, err := b.st.UpsertProceedings(ctx, b.proceedings)
		b.proceedings = nil
		return n, eris.Wrap(err, "registry: upsert processos")
	case len(b.clients) > 0:
		n, err := b.st.UpsertClients(ctx, b.clients)
		b.clients = nil
		return n, eris.Wrap(err, "registry: upsert assistidos")
	}
	return 0, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, eris.Errorf("invalid id %q", s)
	}
	if id <= 0 {
		return 0, eris.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

func parseOptionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := parseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
