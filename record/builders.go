package record

import "time"

// Builders for programmatically constructing records, used by fixture
// sources, the init command and tests. They use functional options,
// following Go idioms for configurable constructors.

// BuildOption configures a record built with New.
type BuildOption func(*Record)

// Until sets the end of the validity interval from a YYYY-MM-DD string.
func Until(date string) BuildOption {
	return func(r *Record) {
		t := MustParseDate(date)
		r.ValidUntil = &t
	}
}

// ReplacedBy links the record to its successor.
func ReplacedBy(id int64) BuildOption {
	return func(r *Record) {
		r.ReplacedBy = &id
	}
}

// Value sets the opaque payload.
func Value(v string) BuildOption {
	return func(r *Record) {
		r.Value = v
	}
}

// Default marks the record as the default choice.
func Default() BuildOption {
	return func(r *Record) {
		r.IsDefault = true
	}
}

// New builds a record valid from the given YYYY-MM-DD date. Panics on
// an unparseable date; builders are for fixtures and tests where the
// input is a literal.
func New(id int64, validFrom string, opts ...BuildOption) Record {
	r := Record{
		ID:        id,
		ValidFrom: MustParseDate(validFrom),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// MustParseDate parses a YYYY-MM-DD string as a UTC instant and panics
// on error.
func MustParseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
