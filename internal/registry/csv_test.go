package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCSV(t *testing.T) {
	input := "# exported 2026-10-01\nid, nome \n1, Ana Souza\n2,Bruno\n"

	headerCh, rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Comment: '#'})

	header := <-headerCh
	assert.Equal(t, []string{"id", "nome"}, header)

	var rows []Row
	for r := range rowCh {
		rows = append(rows, r)
	}
	require.NoError(t, <-errCh)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "Ana Souza"}, rows[0].Fields)
	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, 4, rows[1].Line)
}

func TestStreamCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	headerCh, rowCh, errCh := StreamCSV(ctx, strings.NewReader("id\n1\n"), CSVOptions{})
	_, ok := <-headerCh
	assert.False(t, ok)
	for range rowCh {
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
