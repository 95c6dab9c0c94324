// Package cache implements the identity cache: the full row set of a
// small, slowly-changing table held in memory as an immutable snapshot,
// serving point and bulk lookups without touching the backing store.
//
// Readers always operate against one consistent snapshot. Load builds a
// complete replacement off to the side and swaps it in atomically, so a
// failed load or reload never exposes partial state; the previous
// snapshot simply remains in effect. Reload is an administrative
// operation, typically triggered after a data migration, not part of
// normal request handling.
//
// Example usage:
//
//	c := cache.New(src)
//	if err := c.Load(ctx); err != nil {
//	    // previous snapshot (if any) still serves reads
//	}
//	rate, err := c.FindOne(3)
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/robinvdvleuten/ratebook/record"
	"github.com/robinvdvleuten/ratebook/source"
	"github.com/robinvdvleuten/ratebook/telemetry"
)

// Cache holds the canonical in-memory record set for one backing table.
type Cache struct {
	src    source.Source
	fields record.FieldMap

	// loadMu serializes Load/Reload callers; mu guards the snapshot
	// pointer only. Reads never block on a load in progress.
	loadMu sync.Mutex
	mu     sync.RWMutex
	snap   *Snapshot
}

// Snapshot is one immutable, fully-loaded copy of the backing table.
// Neither the slice nor the map may be mutated after publication.
type Snapshot struct {
	// Generation increases by one on every successful load. Derived
	// indexes key their validity to it.
	Generation uint64

	// Records lists every record in backing-store order.
	Records []record.Record

	byID map[int64]record.Record
}

// Lookup returns the record for id, if present.
func (s *Snapshot) Lookup(id int64) (record.Record, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Option configures a Cache.
type Option func(*Cache)

// WithFieldMap overrides the logical-to-physical field mapping used to
// decode rows.
func WithFieldMap(fm record.FieldMap) Option {
	return func(c *Cache) {
		c.fields = fm
	}
}

// New creates a cache over the given source. No rows are read until
// Load is called.
func New(src source.Source, opts ...Option) *Cache {
	c := &Cache{
		src:    src,
		fields: record.DefaultFieldMap(),
		snap:   &Snapshot{byID: map[int64]record.Record{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the entire backing table, decodes and validates it, and
// atomically replaces the current snapshot. On any failure the error is
// returned and the previous snapshot stays visible; Load is
// all-or-nothing.
func (c *Cache) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	timer := telemetry.FromContext(ctx).Start("cache.load")
	defer timer.End()

	rows, err := c.src.AllRows(ctx)
	if err != nil {
		return &StoreError{Err: err}
	}

	records := make([]record.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := record.DecodeRow(row, c.fields)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, rec)
	}

	if err := record.ValidateChains(records); err != nil {
		return err
	}

	byID := make(map[int64]record.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	c.mu.Lock()
	c.snap = &Snapshot{
		Generation: c.snap.Generation + 1,
		Records:    records,
		byID:       byID,
	}
	c.mu.Unlock()

	return nil
}

// Reload is Load under its administrative name: call it after the
// backing table changed out-of-band.
func (c *Cache) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Snapshot returns the current snapshot. In-flight readers holding an
// older snapshot are unaffected by concurrent reloads.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Generation returns the current snapshot's generation.
func (c *Cache) Generation() uint64 {
	return c.Snapshot().Generation
}

// FindOne returns the record for id, or NotFoundError. There is no
// implicit fallback to the backing store.
func (c *Cache) FindOne(id int64) (record.Record, error) {
	r, ok := c.Snapshot().Lookup(id)
	if !ok {
		return record.Record{}, &NotFoundError{ID: id}
	}
	return r, nil
}

// FindMany returns the records for the given ids, preserving input
// order and duplicates. The call is all-or-nothing: the first missing
// id fails the whole lookup with NotFoundError.
func (c *Cache) FindMany(ids []int64) ([]record.Record, error) {
	snap := c.Snapshot()

	out := make([]record.Record, 0, len(ids))
	for _, id := range ids {
		r, ok := snap.Lookup(id)
		if !ok {
			return nil, &NotFoundError{ID: id}
		}
		out = append(out, r)
	}
	return out, nil
}

// All returns every cached record. The slice is a copy; the records are
// values, so callers cannot corrupt the snapshot.
func (c *Cache) All() []record.Record {
	snap := c.Snapshot()
	out := make([]record.Record, len(snap.Records))
	copy(out, snap.Records)
	return out
}
