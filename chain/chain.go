// Package chain answers "what is valid when" queries over the cached
// record set, honoring replacement chains. A resolver derives one piece
// of state from the cache: the predecessor index, mapping each record
// to the records whose replaced-by column points at it. The index is
// keyed to the cache snapshot's generation and is rebuilt transparently
// after every reload, so callers never hold a stale view.
//
// All queries are pure reads over a single snapshot taken at call
// entry; a reload in the middle of a query cannot mix two generations.
package chain

import (
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ratebook/cache"
	"github.com/robinvdvleuten/ratebook/record"
)

// Resolver resolves time-based queries against a cache.
type Resolver struct {
	cache *cache.Cache

	// view holds the snapshot the index was derived from, swapped
	// wholesale whenever the cache generation moves on.
	view atomic.Pointer[indexedView]
}

// indexedView pairs one snapshot with its derived predecessor index.
type indexedView struct {
	snap *cache.Snapshot

	// predecessors maps id -> sorted ids of records replaced by it.
	predecessors map[int64][]int64
}

// NewResolver creates a resolver over the given cache.
func NewResolver(c *cache.Cache) *Resolver {
	return &Resolver{cache: c}
}

// current returns an indexed view of the cache's present snapshot,
// rebuilding the predecessor index if the cache reloaded since the last
// query. The view swap relies on the cache's snapshot immutability:
// building a fresh view twice under a race is wasteful but harmless,
// since both results are identical for the same generation.
func (r *Resolver) current() *indexedView {
	snap := r.cache.Snapshot()

	if view := r.view.Load(); view != nil && view.snap.Generation == snap.Generation {
		return view
	}

	predecessors := make(map[int64][]int64)
	for _, rec := range snap.Records {
		if rec.ReplacedBy != nil {
			predecessors[*rec.ReplacedBy] = append(predecessors[*rec.ReplacedBy], rec.ID)
		}
	}
	for _, ids := range predecessors {
		slices.Sort(ids)
	}

	view := &indexedView{snap: snap, predecessors: predecessors}
	r.view.Store(view)
	return view
}

// Predecessors returns the ids of the records replaced by id, in
// ascending order. The slice is shared; callers must not mutate it.
func (r *Resolver) Predecessors(id int64) []int64 {
	return r.current().predecessors[id]
}

// ValidAt returns every record valid at instant t: those whose interval
// [ValidFrom, ValidUntil) contains t. Order follows the backing store;
// callers needing a particular order must sort themselves.
func (r *Resolver) ValidAt(t time.Time) []record.Record {
	view := r.current()

	var out []record.Record
	for _, rec := range view.snap.Records {
		if rec.ValidAt(t) {
			out = append(out, rec)
		}
	}
	return out
}

// ValidDuring returns the records usable for the half-open window
// [notBefore, notAfter). From the records whose interval intersects the
// window, only the entry point of each replacement run is returned:
// records whose predecessor also intersects the window are dropped,
// because converting an earlier rate forward along its chain is
// well-defined while the reverse is not.
//
// Returns InvalidRangeError when notAfter is not later than notBefore.
func (r *Resolver) ValidDuring(notBefore, notAfter time.Time) ([]record.Record, error) {
	if !notAfter.After(notBefore) {
		return nil, &InvalidRangeError{NotBefore: notBefore, NotAfter: notAfter}
	}

	view := r.current()

	candidates := make(map[int64]bool)
	for _, rec := range view.snap.Records {
		if rec.Overlaps(notBefore, notAfter) {
			candidates[rec.ID] = true
		}
	}

	var out []record.Record
	for _, rec := range view.snap.Records {
		if !candidates[rec.ID] {
			continue
		}
		if hasCandidatePredecessor(view, rec.ID, candidates) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func hasCandidatePredecessor(view *indexedView, id int64, candidates map[int64]bool) bool {
	for _, pred := range view.predecessors[id] {
		if candidates[pred] {
			return true
		}
	}
	return false
}

// DefaultAt returns the default record at instant t. If the data
// violates the single-default assumption, the lowest id wins; that
// tie-break is deterministic but the underlying data is still wrong.
func (r *Resolver) DefaultAt(t time.Time) (record.Record, bool) {
	var best record.Record
	found := false
	for _, rec := range r.ValidAt(t) {
		if !rec.IsDefault {
			continue
		}
		if !found || rec.ID < best.ID {
			best = rec
			found = true
		}
	}
	return best, found
}

// At resolves the record that applies at instant t, starting from rec
// and walking its replacement chain. Walking forward follows
// replaced-by links; walking backward requires an unambiguous history,
// so a record with zero or several predecessors before its valid-from
// resolves to nothing.
//
// The second return value is false when no unambiguous record applies:
// t predates an ambiguous merge, or the chain expired unreplaced.
func (r *Resolver) At(rec record.Record, t time.Time) (record.Record, bool) {
	view := r.current()

	// Cyclic data is rejected at load time; the visited set merely
	// bounds the walk against a snapshot that bypassed validation.
	visited := make(map[int64]bool)

	for {
		if visited[rec.ID] {
			return record.Record{}, false
		}
		visited[rec.ID] = true

		switch {
		case t.Before(rec.ValidFrom):
			preds := view.predecessors[rec.ID]
			if len(preds) != 1 {
				return record.Record{}, false
			}
			prev, ok := view.snap.Lookup(preds[0])
			if !ok {
				return record.Record{}, false
			}
			rec = prev

		case rec.ValidAt(t):
			return rec, true

		case rec.ReplacedBy == nil:
			return record.Record{}, false

		default:
			next, ok := view.snap.Lookup(*rec.ReplacedBy)
			if !ok {
				return record.Record{}, false
			}
			rec = next
		}
	}
}

// Change is one future transition of a record: the successor taking
// over, or nil when the record expires without replacement.
type Change = *record.Record

// ChangesUntil returns rec's future transitions strictly before t, in
// order. Each element is the successor that takes over, except a final
// nil marking expiry without replacement. A record already valid past t
// yields no changes.
func (r *Resolver) ChangesUntil(rec record.Record, t time.Time) []Change {
	view := r.current()

	visited := map[int64]bool{rec.ID: true}

	var changes []Change
	for rec.Expired(t) {
		if rec.ReplacedBy == nil {
			changes = append(changes, nil)
			break
		}
		next, ok := view.snap.Lookup(*rec.ReplacedBy)
		if !ok || visited[next.ID] {
			changes = append(changes, nil)
			break
		}
		visited[next.ID] = true
		changes = append(changes, &next)
		rec = next
	}
	return changes
}
