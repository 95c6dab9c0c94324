package sqlitesource

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ratebook/record"
)

func openFixture(t *testing.T, records []record.Record) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "rates.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	fm := record.DefaultFieldMap()
	assert.NoError(t, db.CreateTable(ctx, fm))
	assert.NoError(t, db.InsertRecords(ctx, fm, records))
	return db
}

func TestAllRowsRoundTrip(t *testing.T) {
	records := []record.Record{
		record.New(1, "2008-01-01", record.Until("2009-01-01"), record.ReplacedBy(2), record.Value("0.175")),
		record.New(2, "2009-01-01", record.Value("0.15"), record.Default()),
	}
	db := openFixture(t, records)

	rows, err := db.AllRows(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(rows))

	fm := record.DefaultFieldMap()
	decoded := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := record.DecodeRow(row, fm)
		assert.NoError(t, err)
		decoded = append(decoded, rec)
	}

	assert.Equal(t, records, decoded)
}

func TestAllRowsEmptyTable(t *testing.T) {
	db := openFixture(t, nil)

	rows, err := db.AllRows(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(rows))
}

func TestAllRowsMissingTable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.AllRows(context.Background())
	assert.Error(t, err)
}

func TestWithTable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "rates.db"), WithTable("vat_rates"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	fm := record.DefaultFieldMap()
	assert.NoError(t, db.CreateTable(ctx, fm))
	assert.NoError(t, db.InsertRecords(ctx, fm, []record.Record{record.New(1, "2008-01-01")}))

	rows, err := db.AllRows(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(rows))
}

func TestOpenRejectsBadTableName(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "rates.db"), WithTable("rates; DROP TABLE rates"))
	assert.Error(t, err)
}
