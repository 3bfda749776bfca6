package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/convert"
	"github.com/ombuds/enrichment-engine/internal/model"
)

// ConversionError reports a failed acquisition or conversion. It matches
// ErrConversion and unwraps to the underlying cause.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return ErrConversion.Error() + ": " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConversion.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// EnrichDocument converts a binary document to text, classifies and
// extracts it, derives facts and persists them.
func (e *Enricher) EnrichDocument(ctx context.Context, in model.DocumentInput) (*model.DocumentResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("category", "document"), zap.String("mime", in.MimeType))
	if in.DocumentID != nil {
		log = log.With(zap.Int64("documento_id", *in.DocumentID))
	}
	start := time.Now()
	p := e.newPersister(log)

	e.setStatus(ctx, p, in.DocumentID, model.StatusProcessing, nil)

	res, err := e.enrichDocument(ctx, log, p, in)
	if err != nil {
		log.Error("pipeline: document enrichment failed", zap.Error(err))
		e.setStatus(ctx, p, in.DocumentID, model.StatusFailed, nil)
		return nil, err
	}

	e.setStatus(ctx, p, in.DocumentID, model.StatusEnriched, model.Raw{
		"document_type":  string(res.DocumentType),
		"area":           string(res.Area),
		"confidence":     res.Confidence,
		"extracted_data": map[string]any(res.ExtractedData),
	})

	log.Info("pipeline: document enrichment complete",
		zap.String("document_type", string(res.DocumentType)),
		zap.Int("entities", len(res.EntitiesCreated)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (e *Enricher) enrichDocument(ctx context.Context, log *zap.Logger, p *persister, in model.DocumentInput) (*model.DocumentResult, error) {
	text, err := e.documentText(ctx, in)
	if err != nil {
		return nil, err
	}

	cls, err := e.router.ClassifyAndExtract(ctx, text)
	if err != nil {
		return nil, err
	}

	if in.CaseID != nil {
		derived := Derive(cls.DocumentType, cls.Result)
		for _, fact := range derived.Facts {
			factID, ok := p.write(ctx, model.EntityFact, func(ctx context.Context) (string, error) {
				return e.store.CreateFact(ctx, *in.CaseID, fact)
			})
			if !ok || in.DocumentID == nil {
				continue
			}
			p.write(ctx, model.EntityFactEvidence, func(ctx context.Context) (string, error) {
				return e.store.CreateFactEvidence(ctx, model.FactEvidence{
					FactID:       factID,
					DocumentID:   in.DocumentID,
					Description:  "Extraído automaticamente de " + string(cls.DocumentType),
					EvidenceKind: "documento",
					Confidence:   fact.Confidence,
				})
			})
		}
	}

	if in.ClientID != nil || in.ProceedingID != nil {
		p.write(ctx, model.EntityAnnotation, func(ctx context.Context) (string, error) {
			return e.store.CreateAnnotation(ctx, model.Annotation{
				ClientID:     in.ClientID,
				ProceedingID: in.ProceedingID,
				CaseID:       in.CaseID,
				Content:      "[Enrichment] Documento " + string(cls.DocumentType) + " processado automaticamente",
				Kind:         "enrichment",
				Metadata: map[string]any{
					"document_type": string(cls.DocumentType),
					"area":          string(cls.Area),
					"confidence":    cls.Confidence,
				},
			})
		})
	}

	log.Debug("pipeline: document extraction", zap.Int("calls", cls.Calls), zap.String("raw_tag", cls.RawTag))

	return &model.DocumentResult{
		DocumentType:    cls.DocumentType,
		Area:            cls.Area,
		ExtractedData:   cls.Result,
		EntitiesCreated: p.created,
		Confidence:      cls.Confidence,
		MarkdownPreview: truncateRunes(text, e.previewChars),
	}, nil
}

// documentText acquires the document into a local file, converts it and
// removes any temp file it created.
func (e *Enricher) documentText(ctx context.Context, in model.DocumentInput) (string, error) {
	var (
		file *convert.Download
		temp = true
		err  error
	)
	switch {
	case in.FileURL != "":
		if e.fetcher == nil {
			return "", &ConversionError{Err: eris.New("pipeline: no fetcher configured")}
		}
		file, err = e.fetcher.Download(ctx, in.FileURL, in.MimeType)
	case len(in.Content) > 0:
		if err := convert.CheckSize(int64(len(in.Content)), e.maxBytes); err != nil {
			return "", &ConversionError{Err: err}
		}
		file, err = convert.WriteTemp(e.tempDir, in.Content, in.MimeType)
	default:
		info, serr := os.Stat(in.LocalPath)
		if serr != nil {
			return "", &ConversionError{Err: eris.Wrapf(serr, "pipeline: stat %s", in.LocalPath)}
		}
		if err := convert.CheckSize(info.Size(), e.maxBytes); err != nil {
			return "", &ConversionError{Err: err}
		}
		file = &convert.Download{Path: in.LocalPath, MimeType: convert.BaseMIME(in.MimeType), Size: info.Size()}
		temp = false
	}
	if err != nil {
		return "", &ConversionError{Err: err}
	}
	if temp {
		defer file.Remove()
	}

	text, err := e.converter.Convert(ctx, file.Path, file.MimeType)
	if err != nil {
		return "", &ConversionError{Err: err}
	}
	if text == "" {
		return "", &ConversionError{Err: eris.New("pipeline: no text extracted")}
	}
	return text, nil
}

// setStatus records the document's enrichment status when a document id is
// known. Failures are logged only.
func (e *Enricher) setStatus(ctx context.Context, p *persister, documentID *int64, status model.EnrichmentStatus, data model.Raw) {
	if documentID == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := e.store.UpdateEnrichmentStatus(sctx, *documentID, status, data); err != nil {
		p.log.Warn("pipeline: update enrichment status failed",
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
