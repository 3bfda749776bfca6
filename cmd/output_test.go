package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ombuds/enrichment-engine/internal/model"
)

func TestWriteOutput(t *testing.T) {
	res := &model.AgendaResult{
		LinkedCaseIDs: []int64{1, 3},
		AgendaDate:    "2026-10-20",
		Total:         2,
		Confidence:    0.8,
	}

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, "json", res))
	assert.Contains(t, buf.String(), `"processos_vinculados": [`)
	assert.Contains(t, buf.String(), `"data_pauta": "2026-10-20"`)

	buf.Reset()
	require.NoError(t, writeOutput(&buf, "yaml", res))
	assert.Contains(t, buf.String(), "data_pauta:")
	assert.Contains(t, buf.String(), "2026-10-20")
	assert.Contains(t, buf.String(), "total_encontradas: 2")

	assert.Error(t, writeOutput(&buf, "xml", res))
}
