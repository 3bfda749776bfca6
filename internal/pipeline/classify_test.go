package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

const docText = "PODER JUDICIÁRIO. Vistos etc. Julgo procedente a denúncia."

func TestClassifyAndExtract_SpecializedSchema(t *testing.T) {
	ext := new(mockExtractor)
	ext.On("Extract", mock.Anything, schema.Classifier, docText).
		Return(model.Raw{"document_type": "Sentença", "area": "criminal", "confidence": 0.7}, nil).Once()
	ext.On("Extract", mock.Anything, schema.Sentenca, docText).
		Return(model.Raw{"resultado": "condenado", "confidence": 0.95}, nil).Once()

	cls, err := NewRouter(ext).ClassifyAndExtract(context.Background(), docText)
	require.NoError(t, err)

	assert.Equal(t, model.DocSentenca, cls.DocumentType)
	assert.Equal(t, model.AreaCriminal, cls.Area)
	assert.Equal(t, "Sentença", cls.RawTag)
	assert.Equal(t, 2, cls.Calls)
	assert.Equal(t, "condenado", cls.Result.String("resultado"))
	assert.False(t, cls.Result.Has("document_type"))
	assert.InDelta(t, 0.95, cls.Confidence, 1e-9)
	ext.AssertExpectations(t)
}

func TestClassifyAndExtract_NoSpecializedSchema(t *testing.T) {
	for _, tag := range []string{"peticao", "denuncia", "outro"} {
		t.Run(tag, func(t *testing.T) {
			ext := new(mockExtractor)
			ext.On("Extract", mock.Anything, schema.Classifier, docText).
				Return(model.Raw{"document_type": tag, "confidence": 0.6}, nil).Once()

			cls, err := NewRouter(ext).ClassifyAndExtract(context.Background(), docText)
			require.NoError(t, err)
			assert.Equal(t, model.DocumentType(tag), cls.DocumentType)
			assert.Equal(t, 1, cls.Calls)
			assert.Equal(t, tag, cls.Result.String("document_type"))
			assert.InDelta(t, 0.6, cls.Confidence, 1e-9)
			ext.AssertNumberOfCalls(t, "Extract", 1)
		})
	}
}

func TestClassifyAndExtract_UnknownTagRoutesToOutro(t *testing.T) {
	ext := new(mockExtractor)
	ext.On("Extract", mock.Anything, schema.Classifier, docText).
		Return(model.Raw{"document_type": "habeas_corpus"}, nil).Once()

	cls, err := NewRouter(ext).ClassifyAndExtract(context.Background(), docText)
	require.NoError(t, err)
	assert.Equal(t, model.DocOutro, cls.DocumentType)
	assert.Equal(t, "habeas_corpus", cls.RawTag)
	assert.Equal(t, 1, cls.Calls)
	assert.Equal(t, 0.0, cls.Confidence)
}

func TestClassifyAndExtract_ConfidenceFallback(t *testing.T) {
	tests := []struct {
		name        string
		clsConf     any
		specialized model.Raw
		want        float64
	}{
		{"specialized wins", 0.4, model.Raw{"confidence": 0.9}, 0.9},
		{"falls back to classification", 0.4, model.Raw{"conclusao_resumo": "x"}, 0.4},
		{"neither present", nil, model.Raw{}, 0.0},
		{"clamped", 0.4, model.Raw{"confidence": 7.0}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clsRaw := model.Raw{"document_type": "laudo"}
			if tt.clsConf != nil {
				clsRaw["confidence"] = tt.clsConf
			}
			ext := new(mockExtractor)
			ext.On("Extract", mock.Anything, schema.Classifier, docText).Return(clsRaw, nil).Once()
			ext.On("Extract", mock.Anything, schema.Laudo, docText).Return(tt.specialized, nil).Once()

			cls, err := NewRouter(ext).ClassifyAndExtract(context.Background(), docText)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, cls.Confidence, 1e-9)
		})
	}
}

func TestClassifyAndExtract_Errors(t *testing.T) {
	t.Run("classification", func(t *testing.T) {
		ext := new(mockExtractor)
		ext.On("Extract", mock.Anything, schema.Classifier, docText).Return(nil, errors.New("boom")).Once()

		_, err := NewRouter(ext).ClassifyAndExtract(context.Background(), docText)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "classify document")
		ext.AssertNumberOfCalls(t, "Extract", 1)
	})

	t.Run("specialized", func(t *testing.T) {
		ext := new(mockExtractor)
		ext.On("Extract", mock.Anything, schema.Classifier, docText).
			Return(model.Raw{"document_type": "decisao"}, nil).Once()
		ext.On("Extract", mock.Anything, schema.Decisao, docText).Return(nil, errors.New("boom")).Once()

		_, err := NewRouter(ext).ClassifyAndExtract(context.Background(), docText)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extract decisao")
	})
}

func TestSpecializedSchema(t *testing.T) {
	for dt, want := range map[model.DocumentType]*schema.Schema{
		model.DocSentenca: schema.Sentenca,
		model.DocDecisao:  schema.Decisao,
		model.DocLaudo:    schema.Laudo,
		model.DocCertidao: schema.Certidao,
	} {
		got, ok := SpecializedSchema(dt)
		assert.True(t, ok, dt)
		assert.Same(t, want, got)
	}
	_, ok := SpecializedSchema(model.DocPeticao)
	assert.False(t, ok)
}
