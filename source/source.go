// Package source defines the backing-store contract consumed by the
// cache. A source exposes exactly two capabilities: a full-table read
// returning rows, and per-row field access by physical column name.
// The core never writes through a source.
//
// Concrete implementations live in the sqlitesource and yamlsource
// subpackages; Static serves tests and embedded row sets.
package source

import "context"

// Row is one backing-store row, keyed by physical column name. It
// implements record.Row.
type Row map[string]any

// Field returns the value stored under name. The boolean reports
// whether the column exists, which is distinct from a nil value.
func (r Row) Field(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// Source is a tabular backing store. AllRows reads the entire table;
// the cache calls it on every load and reload and at no other time.
type Source interface {
	AllRows(ctx context.Context) ([]Row, error)
}

// Static is an in-memory Source, primarily for tests and for callers
// that assemble their row set programmatically.
type Static struct {
	Rows []Row
}

// AllRows returns the configured rows.
func (s *Static) AllRows(_ context.Context) ([]Row, error) {
	return s.Rows, nil
}

var _ Source = (*Static)(nil)
