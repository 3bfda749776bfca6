package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var processosUpsert = UpsertConfig{
	Table:        "processos",
	Columns:      []string{"id", "numero", "assistido_id", "caso_id"},
	ConflictKeys: []string{"id"},
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.Background(), nil, processosUpsert, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:        "processos",
		ConflictKeys: []string{"id"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:   "processos",
		Columns: []string{"id", "numero"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{
		{int64(1), "0000001-11.2024.8.05.0001", int64(7), nil},
		{int64(2), "0000002-22.2024.8.05.0001", nil, int64(3)},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_processos" \(LIKE "processos" INCLUDING DEFAULTS\) ON COMMIT DROP`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_processos"}, processosUpsert.Columns).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "processos" .* ON CONFLICT \("id"\) DO UPDATE SET "numero" = EXCLUDED."numero"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, processosUpsert, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_processos"}, processosUpsert.Columns).
		WillReturnError(errors.New("copy failed"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, processosUpsert, [][]any{{int64(1), "x", nil, nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy into temp table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSQL(t *testing.T) {
	got := upsertSQL(UpsertConfig{
		Table:        "assistidos",
		Columns:      []string{"id", "nome"},
		ConflictKeys: []string{"id"},
	}, "_tmp")
	assert.Equal(t,
		`INSERT INTO "assistidos" ("id", "nome") SELECT "id", "nome" FROM "_tmp" ON CONFLICT ("id") DO UPDATE SET "nome" = EXCLUDED."nome"`,
		got)

	got = upsertSQL(UpsertConfig{Table: "t", Columns: []string{"id"}, ConflictKeys: []string{"id"}}, "_tmp")
	assert.Contains(t, got, "DO NOTHING")
}

func TestSanitizeTable(t *testing.T) {
	assert.Equal(t, `"processos"`, sanitizeTable("processos"))
	assert.Equal(t, `"public"."processos"`, sanitizeTable("public.processos"))
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "numero", "caso_id"`, quoteAndJoin([]string{"id", "numero", "caso_id"}))
}
