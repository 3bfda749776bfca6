package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// specializedSchemas maps document types to their second-pass schema. Types
// missing here keep the classification result.
var specializedSchemas = map[model.DocumentType]*schema.Schema{
	model.DocSentenca: schema.Sentenca,
	model.DocDecisao:  schema.Decisao,
	model.DocLaudo:    schema.Laudo,
	model.DocCertidao: schema.Certidao,
}

// SpecializedSchema returns the schema used for the second pass, if any.
func SpecializedSchema(dt model.DocumentType) (*schema.Schema, bool) {
	s, ok := specializedSchemas[dt]
	return s, ok
}

// Classification is the outcome of ClassifyAndExtract.
type Classification struct {
	DocumentType model.DocumentType
	Area         model.Area
	// RawTag is the document_type value exactly as returned.
	RawTag     string
	Result     model.Raw
	Confidence float64
	// Calls is the number of extraction calls made (1 or 2).
	Calls int
}

// Router classifies a document and, when a specialized schema exists,
// extracts it with that schema.
type Router struct {
	extractor Extractor
}

// NewRouter creates a Router.
func NewRouter(extractor Extractor) *Router {
	return &Router{extractor: extractor}
}

// ClassifyAndExtract runs the classification schema on text, then the
// specialized schema for the detected type. Type and area always come from
// the classification; the specialized result supersedes the classification
// result when it runs.
func (r *Router) ClassifyAndExtract(ctx context.Context, text string) (*Classification, error) {
	cls, err := r.extractor.Extract(ctx, schema.Classifier, text)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: classify document")
	}

	rawTag := cls.String("document_type")
	docType, known := model.ParseDocumentType(rawTag)
	if !known {
		zap.L().Warn("pipeline: unrecognised document type",
			zap.String("tag", rawTag),
			zap.String("routed_to", string(docType)),
		)
	}

	out := &Classification{
		DocumentType: docType,
		Area:         model.ParseArea(cls.String("area")),
		RawTag:       rawTag,
		Result:       cls,
		Calls:        1,
	}
	clsConf, clsHasConf := cls.ConfidenceOK()

	specialized, ok := SpecializedSchema(docType)
	if !ok {
		out.Confidence = clsConf
		zap.L().Info("pipeline: no specialized schema",
			zap.String("document_type", string(docType)),
			zap.Float64("confidence", out.Confidence),
		)
		return out, nil
	}

	data, err := r.extractor.Extract(ctx, specialized, text)
	out.Calls = 2
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: extract %s", docType)
	}
	out.Result = data

	switch conf, has := data.ConfidenceOK(); {
	case has:
		out.Confidence = conf
	case clsHasConf:
		out.Confidence = clsConf
	}

	zap.L().Info("pipeline: document classified",
		zap.String("document_type", string(docType)),
		zap.String("area", string(out.Area)),
		zap.Float64("confidence", out.Confidence),
	)
	return out, nil
}
