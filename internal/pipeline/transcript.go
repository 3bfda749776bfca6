package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// TranscriptText prefixes a transcript with prior context when present.
func TranscriptText(transcript, prior string) string {
	if prior == "" {
		return transcript
	}
	return "CONTEXTO ANTERIOR:\n" + prior + "\n\n---\n\nTRANSCRIÇÃO ATUAL:\n" + transcript
}

// EnrichTranscript analyses an interview transcript. Facts and personas are
// stored only when a case is given; the summary note is stored whenever the
// analysis produced one.
func (e *Enricher) EnrichTranscript(ctx context.Context, in model.TranscriptInput) (*model.TranscriptResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("category", "transcript"), zap.Int64("assistido_id", in.ClientID))
	start := time.Now()

	raw, err := e.extractor.Extract(ctx, schema.Transcript, TranscriptText(in.Transcript, in.Context))
	if err != nil {
		log.Error("pipeline: transcript extraction failed", zap.Error(err))
		return nil, err
	}

	data := model.DecodeTranscript(raw)
	p := e.newPersister(log)

	if in.CaseID != nil {
		derived := Derive(model.DocTranscript, raw)
		for _, fact := range derived.Facts {
			p.write(ctx, model.EntityFact, func(ctx context.Context) (string, error) {
				return e.store.CreateFact(ctx, *in.CaseID, fact)
			})
		}
		for _, persona := range derived.Personas {
			p.write(ctx, model.EntityPersona, func(ctx context.Context) (string, error) {
				return e.store.CreatePersona(ctx, *in.CaseID, persona, TranscriptSource)
			})
		}
	}

	if data.Summary != "" {
		clientID := in.ClientID
		p.write(ctx, model.EntityAnnotation, func(ctx context.Context) (string, error) {
			return e.store.CreateAnnotation(ctx, model.Annotation{
				ClientID:     &clientID,
				ProceedingID: in.ProceedingID,
				CaseID:       in.CaseID,
				Content:      data.Summary,
				Kind:         TranscriptSource,
				Urgency:      data.Urgency,
				Metadata: map[string]any{
					"key_points":      nonNil(data.KeyPoints),
					"teses_possiveis": nonNil(data.Theses),
				},
			})
		})
	}

	log.Info("pipeline: transcript enrichment complete",
		zap.Int("facts", len(data.Facts)),
		zap.Int("persons", len(data.Persons)),
		zap.Int("entities", len(p.created)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &model.TranscriptResult{
		KeyPoints:        nonNil(data.KeyPoints),
		Facts:            nonNil(data.Facts),
		Persons:          nonNil(data.Persons),
		ClientVersion:    data.ClientVersion,
		Contradictions:   nonNil(data.Contradictions),
		SuggestedActions: nonNil(data.SuggestedActions),
		Theses:           nonNil(data.Theses),
		UrgencyLevel:     data.Urgency,
		UrgencyReason:    data.UrgencyReason,
		Summary:          data.Summary,
		EntitiesCreated:  p.created,
		Confidence:       raw.Confidence(),
	}, nil
}

// nonNil keeps empty lists as [] in JSON output.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
