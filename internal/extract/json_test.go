package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ombuds/enrichment-engine/internal/schema"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around", "Segue o JSON:\n{\"a\": {\"b\": 2}}\nObrigado.", `{"a": {"b": 2}}`},
		{"no object", "nada", "nada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		_, err := parseResponse(schema.Classifier, "  ")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("array is not an object", func(t *testing.T) {
		_, err := parseResponse(schema.Classifier, `[1, 2]`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("null", func(t *testing.T) {
		_, err := parseResponse(schema.Classifier, `null`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := parseResponse(schema.Classifier, `{"area": "VD"}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("negative confidence clamped", func(t *testing.T) {
		raw, err := parseResponse(schema.Classifier, `{"document_type": "outro", "confidence": -0.3}`)
		require.NoError(t, err)
		assert.Equal(t, 0.0, raw["confidence"])
	})

	t.Run("absent confidence stays absent", func(t *testing.T) {
		raw, err := parseResponse(schema.Classifier, `{"document_type": "outro"}`)
		require.NoError(t, err)
		assert.False(t, raw.Has("confidence"))
		assert.Equal(t, 0.0, raw.Confidence())
	})
}
