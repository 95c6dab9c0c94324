package record

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// chainFixture is a well-formed row set covering the interesting chain
// shapes: a dead end, a three-link chain with a merge, a default-marked
// chain, and an unbounded standalone record.
func chainFixture() []Record {
	return []Record{
		New(1, "2008-01-01", Until("2009-01-01"), Value("0.05")),
		New(2, "2008-01-01", Until("2009-01-01"), ReplacedBy(3), Value("0.175")),
		New(3, "2009-01-01", Until("2010-01-01"), ReplacedBy(4), Value("0.15")),
		New(4, "2010-01-01", Value("0.175")),
		New(5, "2008-06-01", Until("2009-01-01"), ReplacedBy(3), Value("0.15")),
		New(6, "2009-01-01", Until("2010-01-01"), ReplacedBy(7), Value("0.19"), Default()),
		New(7, "2010-01-01", Until("2011-01-01"), Value("0.21"), Default()),
		New(8, "2008-01-01", Until("2011-01-01"), ReplacedBy(9), Value("0.07")),
		New(9, "2011-01-01", Value("0.09"), Default()),
		New(10, "2008-01-01", Value("0.00")),
	}
}

func TestValidateChainsWellFormed(t *testing.T) {
	assert.NoError(t, ValidateChains(chainFixture()))
}

func TestValidateChainsErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		check   func(t *testing.T, err error)
	}{
		{
			name: "duplicate id",
			records: []Record{
				New(1, "2008-01-01"),
				New(1, "2009-01-01"),
			},
			check: func(t *testing.T, err error) {
				var derr *DuplicateIDError
				assert.True(t, errors.As(err, &derr))
				assert.Equal(t, int64(1), derr.ID)
			},
		},
		{
			name:    "missing valid-from",
			records: []Record{{ID: 1}},
			check: func(t *testing.T, err error) {
				var ierr *IntervalError
				assert.True(t, errors.As(err, &ierr))
			},
		},
		{
			name: "inverted interval",
			records: []Record{
				New(1, "2010-01-01", Until("2009-01-01")),
			},
			check: func(t *testing.T, err error) {
				var ierr *IntervalError
				assert.True(t, errors.As(err, &ierr))
			},
		},
		{
			name: "open-ended record with replacement",
			records: []Record{
				New(1, "2008-01-01", ReplacedBy(2)),
				New(2, "2009-01-01"),
			},
			check: func(t *testing.T, err error) {
				var terr *TerminalLinkError
				assert.True(t, errors.As(err, &terr))
			},
		},
		{
			name: "dangling replacement",
			records: []Record{
				New(1, "2008-01-01", Until("2009-01-01"), ReplacedBy(99)),
			},
			check: func(t *testing.T, err error) {
				var derr *DanglingLinkError
				assert.True(t, errors.As(err, &derr))
				assert.Equal(t, int64(99), derr.ReplacedBy)
			},
		},
		{
			name: "gap at splice point",
			records: []Record{
				New(1, "2008-01-01", Until("2009-01-01"), ReplacedBy(2)),
				New(2, "2009-02-01"),
			},
			check: func(t *testing.T, err error) {
				var serr *SpliceError
				assert.True(t, errors.As(err, &serr))
			},
		},
		{
			name: "overlap at splice point",
			records: []Record{
				New(1, "2008-01-01", Until("2009-01-01"), ReplacedBy(2)),
				New(2, "2008-12-01"),
			},
			check: func(t *testing.T, err error) {
				var serr *SpliceError
				assert.True(t, errors.As(err, &serr))
			},
		},
		{
			name: "two-cycle",
			records: []Record{
				New(1, "2008-01-01", Until("2009-01-01"), ReplacedBy(2)),
				New(2, "2009-01-01", Until("2008-01-01"), ReplacedBy(1)),
			},
			check: func(t *testing.T, err error) {
				var cerr *ChainCycleError
				assert.True(t, errors.As(err, &cerr))
			},
		},
		{
			name: "self-cycle",
			records: []Record{
				New(1, "2008-01-01", Until("2009-01-01"), ReplacedBy(1)),
			},
			check: func(t *testing.T, err error) {
				var cerr *ChainCycleError
				assert.True(t, errors.As(err, &cerr))
				assert.Equal(t, []int64{1, 1}, cerr.Path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChains(tt.records)
			assert.Error(t, err)

			var verr *ValidationErrors
			assert.True(t, errors.As(err, &verr))
			tt.check(t, err)
		})
	}
}

func TestValidateChainsCollectsAllErrors(t *testing.T) {
	records := []Record{
		New(1, "2010-01-01", Until("2009-01-01")),              // inverted
		New(2, "2008-01-01", Until("2009-01-01"), ReplacedBy(99)), // dangling
		New(3, "2008-01-01", ReplacedBy(4)),                    // terminal link
		New(4, "2008-01-01"),
	}

	err := ValidateChains(records)
	assert.Error(t, err)

	var verr *ValidationErrors
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, 3, len(verr.Errors))
}
