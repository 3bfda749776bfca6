package pipeline

import (
	"github.com/ombuds/enrichment-engine/internal/model"
)

const (
	defaultDerivedConfidence = 0.8
	regimeConfidence         = 0.9
	criticalPointConfidence  = 0.7

	// TranscriptSource tags rows derived from a transcript analysis.
	TranscriptSource = "enrichment:transcript"
)

// Derivation is what Derive produces from one extraction result.
type Derivation struct {
	Facts    []model.DerivedFact
	Personas []model.DerivedPersona
}

// DocumentSource tags rows derived from a document of the given type.
func DocumentSource(dt model.DocumentType) string {
	return "enrichment:document:" + string(dt)
}

// Derive turns an extraction result into facts and personas. It performs no
// I/O and never fails; types without rules yield an empty Derivation.
func Derive(docType model.DocumentType, raw model.Raw) Derivation {
	switch docType {
	case model.DocSentenca:
		return Derivation{Facts: deriveSentenca(model.DecodeSentenca(raw))}
	case model.DocLaudo:
		return Derivation{Facts: deriveLaudo(model.DecodeLaudo(raw))}
	case model.DocDecisao:
		return Derivation{Facts: deriveDecisao(model.DecodeDecisao(raw))}
	case model.DocTranscript:
		return deriveTranscript(model.DecodeTranscript(raw))
	default:
		return Derivation{}
	}
}

func deriveSentenca(d model.SentencaData) []model.DerivedFact {
	var facts []model.DerivedFact
	source := DocumentSource(model.DocSentenca)
	if d.Resultado != "" {
		crime := d.TipoPenal
		if crime == "" {
			crime = "crime não identificado"
		}
		facts = append(facts, model.DerivedFact{
			Description: "Sentença " + d.Resultado + " — " + crime,
			Kind:        model.FactUncontested,
			Confidence:  orDefault(d.Confidence, defaultDerivedConfidence),
			Source:      source,
		})
	}
	if d.RegimeInicial != "" {
		facts = append(facts, model.DerivedFact{
			Description: "Regime inicial: " + d.RegimeInicial,
			Kind:        model.FactUncontested,
			Confidence:  regimeConfidence,
			Source:      source,
		})
	}
	return facts
}

func deriveLaudo(d model.LaudoData) []model.DerivedFact {
	var facts []model.DerivedFact
	source := DocumentSource(model.DocLaudo)
	if d.ConclusaoResumo != "" {
		facts = append(facts, model.DerivedFact{
			Description: "Laudo: " + d.ConclusaoResumo,
			Kind:        model.FactUncontested,
			Confidence:  orDefault(d.Confidence, defaultDerivedConfidence),
			Source:      source,
		})
	}
	for _, p := range d.PontosCriticos {
		facts = append(facts, model.DerivedFact{
			Description: "Ponto crítico do laudo: " + p,
			Kind:        model.FactContested,
			Confidence:  criticalPointConfidence,
			Source:      source,
		})
	}
	return facts
}

func deriveDecisao(d model.DecisaoData) []model.DerivedFact {
	if d.Resultado == "" {
		return nil
	}
	return []model.DerivedFact{{
		Description: "Decisão (" + d.TipoDecisao + "): " + d.Resultado,
		Kind:        model.FactUncontested,
		Confidence:  orDefault(d.Confidence, defaultDerivedConfidence),
		Source:      DocumentSource(model.DocDecisao),
	}}
}

func deriveTranscript(d model.TranscriptData) Derivation {
	var out Derivation
	for _, f := range d.Facts {
		out.Facts = append(out.Facts, model.DerivedFact{
			Description: f.Description,
			Kind:        f.Kind,
			Confidence:  f.Confidence,
			Source:      TranscriptSource,
		})
	}
	for _, p := range d.Persons {
		out.Personas = append(out.Personas, model.DerivedPersona{
			Name:        p.Name,
			Role:        p.Role,
			Description: p.Description,
		})
	}
	return out
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
