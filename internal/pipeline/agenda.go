package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// EnrichAgenda extracts the hearings of a pasted agenda and links them to
// stored proceedings.
func (e *Enricher) EnrichAgenda(ctx context.Context, in model.AgendaInput) (*model.AgendaResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("category", "agenda"))
	start := time.Now()

	raw, err := e.extractor.Extract(ctx, schema.Agenda, in.AgendaText)
	if err != nil {
		log.Error("pipeline: agenda extraction failed", zap.Error(err))
		return nil, err
	}

	hearings := model.DecodeHearings(raw)
	cases := newCaseLinker(e.store, e.newPersister(log))
	for _, h := range hearings {
		cases.link(ctx, h.CaseNumber)
	}

	log.Info("pipeline: agenda enrichment complete",
		zap.Int("hearings", len(hearings)),
		zap.Int("linked", len(cases.linked())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &model.AgendaResult{
		Hearings:      hearings,
		LinkedCaseIDs: cases.linked(),
		AgendaDate:    raw.String("data_pauta"),
		Total:         len(hearings),
		Confidence:    raw.Confidence(),
	}, nil
}
