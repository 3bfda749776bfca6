// Package pipeline turns documents, pasted case-system text, interview
// transcripts, hearing agendas and chat messages into structured records.
// Extraction failures are fatal; persistence is best-effort.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/convert"
	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
	"github.com/ombuds/enrichment-engine/internal/store"
)

// ErrConversion is wrapped when a document cannot be acquired or converted
// to text.
var ErrConversion = eris.New("document conversion failed")

// Extractor runs one schema against text.
type Extractor interface {
	Extract(ctx context.Context, s *schema.Schema, text string) (model.Raw, error)
}

// Downloader fetches a signed URL into a local temp file.
type Downloader interface {
	Download(ctx context.Context, url, mimeHint string) (*convert.Download, error)
}

// Deps are the collaborators of an Enricher.
type Deps struct {
	Converter convert.Converter
	Fetcher   Downloader
	Extractor Extractor
	Store     store.Store

	// WriteTimeout bounds each individual store call. Default: 10s.
	WriteTimeout time.Duration
	// PreviewChars is the length of the document text preview. Default: 500.
	PreviewChars int
	// TempDir holds temp files for in-memory documents. Empty uses os.TempDir.
	TempDir string
	// MaxFileSizeMB caps inline and local documents. Default: 50.
	MaxFileSizeMB int
}

// Enricher runs the five enrichment categories.
type Enricher struct {
	converter    convert.Converter
	fetcher      Downloader
	extractor    Extractor
	store        store.Store
	router       *Router
	writeTimeout time.Duration
	previewChars int
	tempDir      string
	maxBytes     int64
}

// New creates an Enricher.
func New(d Deps) *Enricher {
	if d.WriteTimeout <= 0 {
		d.WriteTimeout = 10 * time.Second
	}
	if d.PreviewChars <= 0 {
		d.PreviewChars = 500
	}
	if d.MaxFileSizeMB <= 0 {
		d.MaxFileSizeMB = 50
	}
	return &Enricher{
		converter:    d.Converter,
		fetcher:      d.Fetcher,
		extractor:    d.Extractor,
		store:        d.Store,
		router:       NewRouter(d.Extractor),
		writeTimeout: d.WriteTimeout,
		previewChars: d.PreviewChars,
		tempDir:      d.TempDir,
		maxBytes:     int64(d.MaxFileSizeMB) * 1024 * 1024,
	}
}

// persister records best-effort writes for one pipeline run.
type persister struct {
	log     *zap.Logger
	timeout time.Duration
	created []model.CreatedEntity
}

func (e *Enricher) newPersister(log *zap.Logger) *persister {
	return &persister{log: log, timeout: e.writeTimeout, created: []model.CreatedEntity{}}
}

// write runs fn under its own deadline. A failure is logged and the entity
// is left out of the created list.
func (p *persister) write(ctx context.Context, kind model.EntityKind, fn func(ctx context.Context) (string, error)) (string, bool) {
	wctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	id, err := fn(wctx)
	if err != nil {
		p.log.Warn("pipeline: persist failed", zap.String("entity", string(kind)), zap.Error(err))
		return "", false
	}
	p.created = append(p.created, model.CreatedEntity{Kind: kind, ID: id})
	return id, true
}

// lookup runs a best-effort read under the write deadline.
func lookup[T any](ctx context.Context, p *persister, what string, fn func(ctx context.Context) (*T, error)) *T {
	lctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	v, err := fn(lctx)
	if err != nil {
		p.log.Warn("pipeline: lookup failed", zap.String("lookup", what), zap.Error(err))
		return nil
	}
	return v
}

// caseLinker resolves case numbers to proceedings, once per normalised
// number, and collects the distinct proceeding ids found.
type caseLinker struct {
	store store.Store
	p     *persister
	seen  map[string]*model.Proceeding
	ids   map[int64]bool
	order []int64
}

func newCaseLinker(st store.Store, p *persister) *caseLinker {
	return &caseLinker{store: st, p: p, seen: map[string]*model.Proceeding{}, ids: map[int64]bool{}}
}

// link returns the proceeding for number, or nil.
func (l *caseLinker) link(ctx context.Context, number string) *model.Proceeding {
	if number == "" {
		return nil
	}
	key := model.NormalizeCaseNumber(number)
	if proc, ok := l.seen[key]; ok {
		return proc
	}
	proc := lookup(ctx, l.p, "processo", func(ctx context.Context) (*model.Proceeding, error) {
		return l.store.FindProceedingByNumber(ctx, key)
	})
	l.seen[key] = proc
	if proc != nil && !l.ids[proc.ID] {
		l.ids[proc.ID] = true
		l.order = append(l.order, proc.ID)
	}
	return proc
}

// linked returns the proceeding ids in first-seen order, never nil.
func (l *caseLinker) linked() []int64 {
	if l.order == nil {
		return []int64{}
	}
	return l.order
}
