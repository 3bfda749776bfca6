package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// EnrichNotices extracts court notices from pasted case-system text, links
// them to stored proceedings and clients, and notes each linked notice on
// its proceeding.
func (e *Enricher) EnrichNotices(ctx context.Context, in model.NoticeInput) (*model.NoticeResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("category", "notices"))
	start := time.Now()

	raw, err := e.extractor.Extract(ctx, schema.Notices, in.RawText)
	if err != nil {
		log.Error("pipeline: notice extraction failed", zap.Error(err))
		return nil, err
	}

	notices := model.DecodeNotices(raw)
	p := e.newPersister(log)
	cases := newCaseLinker(e.store, p)
	clients := e.identifyClients(ctx, p, notices)

	for _, n := range notices {
		proc := cases.link(ctx, n.CaseNumber)
		if proc == nil {
			continue
		}
		p.write(ctx, model.EntityAnnotation, func(ctx context.Context) (string, error) {
			return e.store.CreateAnnotation(ctx, noticeAnnotation(n, proc))
		})
	}

	log.Info("pipeline: notice enrichment complete",
		zap.Int("notices", len(notices)),
		zap.Int("linked", len(cases.linked())),
		zap.Int("entities", len(p.created)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &model.NoticeResult{
		Notices:           notices,
		LinkedCaseIDs:     cases.linked(),
		IdentifiedClients: clients,
		EntitiesCreated:   p.created,
		Total:             len(notices),
		Summary:           raw.String("resumo"),
		Confidence:        raw.Confidence(),
	}, nil
}

// identifyClients looks up each notified person among stored clients.
func (e *Enricher) identifyClients(ctx context.Context, p *persister, notices []model.Notice) []model.Client {
	out := []model.Client{}
	names := map[string]bool{}
	ids := map[int64]bool{}
	for _, n := range notices {
		key := model.NormalizeTag(n.NotifiedPerson)
		if key == "" || names[key] {
			continue
		}
		names[key] = true
		c := lookup(ctx, p, "assistido", func(ctx context.Context) (*model.Client, error) {
			return e.store.FindClientByName(ctx, n.NotifiedPerson)
		})
		if c != nil && !ids[c.ID] {
			ids[c.ID] = true
			out = append(out, *c)
		}
	}
	return out
}

func noticeAnnotation(n model.Notice, proc *model.Proceeding) model.Annotation {
	content := n.Summary
	if content == "" {
		content = "Intimação no processo " + proc.Number
		if n.DocumentKind != "" {
			content += " (" + n.DocumentKind + ")"
		}
	}
	meta := map[string]any{
		"numero_processo": proc.Number,
		"reu_preso":       n.InCustody,
	}
	if n.DeadlineKind != "" {
		meta["tipo_prazo"] = n.DeadlineKind
	}
	if n.Deadline != "" {
		meta["data_limite"] = n.Deadline
	}
	if n.DeadlineDays > 0 {
		meta["dias_prazo"] = n.DeadlineDays
	}
	return model.Annotation{
		ClientID:     proc.ClientID,
		ProceedingID: &proc.ID,
		CaseID:       proc.CaseID,
		Content:      content,
		Kind:         "enrichment:intimacao",
		Urgency:      n.Urgency,
		Metadata:     meta,
	}
}
