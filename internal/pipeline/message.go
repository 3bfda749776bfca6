package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// messagePreviewChars is the note length used when triage returns no summary.
const messagePreviewChars = 200

// EnrichMessage triages an inbound chat message. A note is stored when the
// message is urgent or the sender is a known client.
func (e *Enricher) EnrichMessage(ctx context.Context, in model.MessageInput) (*model.MessageResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("category", "message"), zap.String("contact_id", in.ContactID))
	start := time.Now()

	raw, err := e.extractor.Extract(ctx, schema.Message, in.Message)
	if err != nil {
		log.Error("pipeline: message triage failed", zap.Error(err))
		return nil, err
	}

	triage := model.DecodeMessageTriage(raw)
	p := e.newPersister(log)

	if triage.Urgency.AtLeast(model.UrgencyHigh) || in.ClientID != nil {
		content := triage.Summary
		if content == "" {
			content = truncateRunes(in.Message, messagePreviewChars)
		}
		p.write(ctx, model.EntityAnnotation, func(ctx context.Context) (string, error) {
			return e.store.CreateAnnotation(ctx, model.Annotation{
				ClientID: in.ClientID,
				Content:  content,
				Kind:     "enrichment:whatsapp",
				Urgency:  triage.Urgency,
				Metadata: map[string]any{
					"contact_id":     in.ContactID,
					"subject":        triage.Subject,
					"extracted_info": map[string]any(triage.ExtractedInfo),
				},
			})
		})
	}

	log.Info("pipeline: message triage complete",
		zap.String("urgency", string(triage.Urgency)),
		zap.Int("entities", len(p.created)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &model.MessageResult{
		UrgencyLevel:      triage.Urgency,
		Subject:           triage.Subject,
		ExtractedInfo:     triage.ExtractedInfo,
		SuggestedResponse: triage.SuggestedResponse,
		EntitiesCreated:   p.created,
		Confidence:        raw.Confidence(),
	}, nil
}
