package record

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

// rowMap is a trivial Row implementation for decoder tests.
type rowMap map[string]any

func (m rowMap) Field(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

func TestDecodeRowDefaults(t *testing.T) {
	fm := DefaultFieldMap()

	row := rowMap{
		"id":             int64(3),
		"valid_from":     time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC),
		"valid_until":    "2010-01-01",
		"replaced_by_id": int64(4),
		"value":          "0.19",
		"is_default":     true,
	}

	rec, err := DecodeRow(row, fm)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), rec.ID)
	assert.Equal(t, date("2009-01-01"), rec.ValidFrom)
	assert.NotZero(t, rec.ValidUntil)
	assert.Equal(t, date("2010-01-01"), *rec.ValidUntil)
	assert.NotZero(t, rec.ReplacedBy)
	assert.Equal(t, int64(4), *rec.ReplacedBy)
	assert.Equal(t, "0.19", rec.Value)
	assert.True(t, rec.IsDefault)
}

func TestDecodeRowRenamedFields(t *testing.T) {
	fm := DefaultFieldMap()
	fm.ID = "rate_id"
	fm.ValidFrom = "effective_from"
	fm.ValidUntil = "effective_until"
	fm.ReplacedBy = "successor_id"
	fm.Value = "rate"
	fm.IsDefault = "preferred"

	row := rowMap{
		"rate_id":        "7",
		"effective_from": "2010-01-01T00:00:00Z",
		"rate":           "0.21",
		"preferred":      "1",
	}

	rec, err := DecodeRow(row, fm)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, date("2010-01-01"), rec.ValidFrom)
	assert.Zero(t, rec.ValidUntil)
	assert.Zero(t, rec.ReplacedBy)
	assert.Equal(t, "0.21", rec.Value)
	assert.True(t, rec.IsDefault)
}

func TestDecodeRowTypeVariety(t *testing.T) {
	fm := DefaultFieldMap()

	tests := []struct {
		name string
		row  rowMap
		want Record
	}{
		{
			name: "sqlite shapes",
			row: rowMap{
				"id":         int64(1),
				"valid_from": "2008-01-01 00:00:00",
				"value":      []byte("0.175"),
				"is_default": int64(0),
			},
			want: New(1, "2008-01-01", Value("0.175")),
		},
		{
			name: "yaml shapes",
			row: rowMap{
				"id":             2,
				"valid_from":     "2008-01-01",
				"valid_until":    "2009-01-01",
				"replaced_by_id": 3,
				"value":          "0.19",
				"is_default":     false,
			},
			want: New(2, "2008-01-01", Until("2009-01-01"), ReplacedBy(3), Value("0.19")),
		},
		{
			name: "numeric payload",
			row: rowMap{
				"id":         float64(5),
				"valid_from": "2008-06-01",
				"value":      0.07,
			},
			want: New(5, "2008-06-01", Value("0.07")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRow(tt.row, fm)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestDecodeRowErrors(t *testing.T) {
	fm := DefaultFieldMap()

	tests := []struct {
		name  string
		row   rowMap
		field string
	}{
		{"missing id", rowMap{"valid_from": "2008-01-01"}, "id"},
		{"nil id", rowMap{"id": nil, "valid_from": "2008-01-01"}, "id"},
		{"missing valid-from", rowMap{"id": int64(1)}, "valid_from"},
		{"garbage timestamp", rowMap{"id": int64(1), "valid_from": "next tuesday"}, "valid_from"},
		{"fractional id", rowMap{"id": 1.5, "valid_from": "2008-01-01"}, "id"},
		{"garbage boolean", rowMap{"id": int64(1), "valid_from": "2008-01-01", "is_default": "maybe"}, "is_default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRow(tt.row, fm)
			assert.Error(t, err)

			var derr *DecodeError
			assert.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.field, derr.Field)
		})
	}
}
